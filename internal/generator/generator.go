// Package generator produces synthetic applicant datasets for demos, load
// seeding, and matcher validation.
//
// All data is 100% synthetic: user ids are prefixed SYNTHETIC_ and every
// field is drawn from a seeded pseudo-random distribution, so the same seed
// always reproduces the same dataset. Each profile carries an independently
// computed ground-truth product label used to validate the Product Matcher's
// agreement rate.
package generator

import (
	"fmt"
	"math/rand"

	"agriflow/bnpl-api/internal/domain"
)

// DefaultSeed reproduces the canonical demo dataset.
const DefaultSeed = 42

// LabeledProfile is a synthetic applicant plus its ground-truth product.
type LabeledProfile struct {
	domain.ApplicantProfile
	TruePreferredProduct string `json:"true_preferred_product"`
}

// Generate produces n labeled synthetic applicant profiles from the given
// seed.
func Generate(n int, seed int64) []LabeledProfile {
	rng := rand.New(rand.NewSource(seed))
	profiles := make([]LabeledProfile, n)

	for i := range profiles {
		p := randomProfile(rng, i+1)
		profiles[i] = LabeledProfile{
			ApplicantProfile:     p,
			TruePreferredProduct: labelProduct(&p),
		}
	}
	return profiles
}

func randomProfile(rng *rand.Rand, seq int) domain.ApplicantProfile {
	region := weightedChoice(rng, domain.ValidRegions, []float64{0.25, 0.20, 0.25, 0.15, 0.15})
	farmType := weightedChoice(rng, domain.ValidFarmTypes, []float64{0.60, 0.25, 0.15})
	crop := domain.ValidCrops[rng.Intn(len(domain.ValidCrops))]

	// Farm size: lognormal base scaled by operation type.
	sizeMult := map[string]float64{
		domain.FarmSmallholder: 0.3,
		domain.FarmCommercial:  3.0,
		domain.FarmCooperative: 1.5,
	}[farmType]
	farmSize := clip(logNormal(rng, 2.0, 1.5)*sizeMult, 0.5, 500.0)

	experience := int(clip(gammaInt(rng, 3, 4), 0, 40))

	// Income correlates with size and experience, with multiplicative noise.
	baseIncome := 5000 + farmSize*800 + float64(experience)*500
	income := clip(baseIncome*logNormal(rng, 0, 0.4), 5000, 500000)

	// Recent inflows: 0-3x monthly income, skewed low.
	inflows := clip(income*beta(rng, 2, 3)*3, 0, 1000000)

	// Order value correlates with farm size.
	order := clip((1000+farmSize*200)*logNormal(rng, 0, 0.5), 1000, 200000)

	trust := clip(beta(rng, 6, 2)*100, 0, 100)
	identity := clip(beta(rng, 7, 2)*100, 0, 100)

	// Prior defaults: heavily skewed to zero.
	defaults := int(clip(float64(poisson(rng, beta(rng, 1, 9)*2)), 0, 5))

	return domain.ApplicantProfile{
		UserID:              fmt.Sprintf("SYNTHETIC_%04d", seq),
		Region:              region,
		FarmType:            farmType,
		CropType:            crop,
		FarmSizeHa:          farmSize,
		YearsExperience:     experience,
		MonthlyIncomeEst:    income,
		RecentCashInflows:   inflows,
		AvgOrderValue:       order,
		DeviceTrustScore:    trust,
		IdentityConsistency: identity,
		PriorDefaults:       defaults,
	}
}

// labelProduct computes the ground-truth product label. It deliberately
// duplicates the eligibility predicates (same priority order as the matcher)
// rather than calling into internal/product, so the agreement-rate check
// exercises two independent implementations of the policy.
func labelProduct(p *domain.ApplicantProfile) string {
	switch {
	case p.FarmType == domain.FarmCommercial && p.AvgOrderValue > 80000:
		return domain.ProductEquipment
	case p.AvgOrderValue < 15000 && p.DeviceTrustScore > 70:
		return domain.ProductCash
	case (p.CropType == domain.CropMaize || p.CropType == domain.CropRice) && p.AvgOrderValue < 30000:
		return domain.ProductSeeds
	case (p.CropType == domain.CropVegetables || p.CropType == domain.CropHorticulture) && p.AvgOrderValue < 50000:
		return domain.ProductFertilizer
	case (p.CropType == domain.CropMixed || p.FarmType == domain.FarmCooperative) && p.DeviceTrustScore > 60:
		return domain.ProductInput
	default:
		return domain.ProductPremium
	}
}

// AgreementRate returns the share of labeled profiles whose ground-truth
// label matches the given predictions.
func AgreementRate(predictions []string, profiles []LabeledProfile) (float64, error) {
	if len(predictions) != len(profiles) {
		return 0, fmt.Errorf("predictions (%d) and profiles (%d) must have the same length", len(predictions), len(profiles))
	}
	if len(profiles) == 0 {
		return 0, fmt.Errorf("no profiles to compare")
	}

	correct := 0
	for i, pred := range predictions {
		if pred == profiles[i].TruePreferredProduct {
			correct++
		}
	}
	return float64(correct) / float64(len(profiles)), nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
