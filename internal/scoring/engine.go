// Package scoring implements the rule-based credit risk scoring engine.
//
// Architecture:
//   The engine is a pure function over the applicant profile — it reads only
//   constant weight tables fixed at compile time and holds no state between
//   calls. Persisting the result is the HTTP handler's responsibility.
//
// Scoring philosophy:
//   Eight rule components each yield a risk value in [0, 1]. A fixed-weight
//   linear combination (weights sum to 1.0) produces the linear risk score,
//   which a logistic transform maps to a late-payment probability. The
//   weights and lookup tables are deliberately plain constants so the scoring
//   formula stays auditable.
//
// Components:
//   1. Region          — static per-region table
//   2. Farm type       — static table
//   3. Experience      — bucketed by years farming
//   4. Prior defaults  — linear penalty, capped
//   5. Liquidity       — recent inflows vs 3x monthly income
//   6. Farm size       — U-shaped: subsistence and concentration risk
//   7. Device trust    — inverse of the device trust score
//   8. Identity        — inverse of the identity consistency score
package scoring

import (
	"math"
	"sort"

	"agriflow/bnpl-api/internal/domain"
)

// Logistic transform parameters for mapping linear score to PD.
const (
	sigmoidSteepness  = 15.0
	sigmoidInflection = 0.35
)

// Component weights. They must sum to 1.0.
const (
	weightRegion     = 0.12
	weightFarmType   = 0.18
	weightExperience = 0.15
	weightDefaults   = 0.20
	weightLiquidity  = 0.10
	weightFarmSize   = 0.08
	weightDevice     = 0.10
	weightIdentity   = 0.07
)

// regionRisk reflects historical default rates per region.
var regionRisk = map[string]float64{
	domain.RegionNorth:   0.15,
	domain.RegionSouth:   0.25,
	domain.RegionEast:    0.15,
	domain.RegionWest:    0.30,
	domain.RegionCentral: 0.20,
}

// farmTypeRisk reflects operational stability per farm type.
var farmTypeRisk = map[string]float64{
	domain.FarmSmallholder: 0.35,
	domain.FarmCommercial:  0.10,
	domain.FarmCooperative: 0.20,
}

// Fallbacks for values outside the known tables. The API boundary rejects
// these, so they only matter for callers that bypass validation.
const (
	defaultRegionRisk   = 0.20
	defaultFarmTypeRisk = 0.25
)

// ─── Public API ───────────────────────────────────────────────────────────────

// Score computes the full risk assessment for an applicant: linear score,
// late-payment probability, tier, decision, and the sorted factor breakdown.
func Score(p *domain.ApplicantProfile) domain.RiskAssessment {
	factors := componentFactors(p)

	var linear float64
	for _, f := range factors {
		linear += f.Contribution
	}
	linear = clamp01(linear)

	pd := LatePaymentProbability(linear)
	tier := Tier(pd)

	// Sort contributions descending so the strongest drivers come first.
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Contribution > factors[j].Contribution
	})

	top := factors
	if len(top) > 3 {
		top = top[:3]
	}

	return domain.RiskAssessment{
		LinearRiskScore: linear,
		LatePaymentProb: pd,
		RiskTier:        tier,
		Decision:        Decision(tier),
		TopFactors:      top,
		AllFactors:      factors,
	}
}

// LatePaymentProbability maps a linear risk score to a PD in [0, 1] via the
// logistic transform 1 / (1 + e^(-k(score - theta))).
func LatePaymentProbability(linearScore float64) float64 {
	return 1.0 / (1.0 + math.Exp(-sigmoidSteepness*(linearScore-sigmoidInflection)))
}

// Tier buckets a late-payment probability into a risk tier.
func Tier(pd float64) string {
	switch {
	case pd < domain.ThresholdLow:
		return domain.TierLow
	case pd < domain.ThresholdMedium:
		return domain.TierMedium
	case pd < domain.ThresholdDecline:
		return domain.TierHigh
	default:
		return domain.TierDecline
	}
}

// Decision maps a risk tier to its approval decision 1:1.
func Decision(tier string) string {
	switch tier {
	case domain.TierLow:
		return domain.DecisionAutoApprove
	case domain.TierMedium:
		return domain.DecisionReducedLimit
	case domain.TierHigh:
		return domain.DecisionManualReview
	default:
		return domain.DecisionAutoDecline
	}
}

// ─── Rule components ──────────────────────────────────────────────────────────

func componentFactors(p *domain.ApplicantProfile) []domain.RiskFactor {
	components := []struct {
		name   string
		raw    float64
		weight float64
	}{
		{"region_risk", lookupRegionRisk(p.Region), weightRegion},
		{"farm_type_risk", lookupFarmTypeRisk(p.FarmType), weightFarmType},
		{"experience_risk", experienceRisk(p.YearsExperience), weightExperience},
		{"prior_defaults", priorDefaultsRisk(p.PriorDefaults), weightDefaults},
		{"liquidity_risk", liquidityRisk(p.RecentCashInflows, p.MonthlyIncomeEst), weightLiquidity},
		{"farm_size_risk", farmSizeRisk(p.FarmSizeHa), weightFarmSize},
		{"device_trust", deviceRisk(p.DeviceTrustScore), weightDevice},
		{"identity_consistency", identityRisk(p.IdentityConsistency), weightIdentity},
	}

	factors := make([]domain.RiskFactor, len(components))
	for i, c := range components {
		factors[i] = domain.RiskFactor{
			Name:         c.name,
			RawRisk:      c.raw,
			Weight:       c.weight,
			Contribution: c.weight * c.raw,
		}
	}
	return factors
}

func lookupRegionRisk(region string) float64 {
	if r, ok := regionRisk[region]; ok {
		return r
	}
	return defaultRegionRisk
}

func lookupFarmTypeRisk(farmType string) float64 {
	if r, ok := farmTypeRisk[farmType]; ok {
		return r
	}
	return defaultFarmTypeRisk
}

// experienceRisk buckets years of farming experience; newcomers carry the
// highest risk.
func experienceRisk(years int) float64 {
	switch {
	case years <= 2:
		return 0.40
	case years <= 10:
		return 0.25
	case years <= 20:
		return 0.15
	default:
		return 0.10
	}
}

// priorDefaultsRisk penalises each prior default linearly, capped at 0.75.
// The cap is inclusive: 5 defaults lands exactly on it.
func priorDefaultsRisk(defaults int) float64 {
	return math.Min(float64(defaults)*0.15, 0.75)
}

// liquidityRisk compares recent cash inflows to a 3x-monthly-income target.
// Zero or negative income resolves to maximum risk rather than a division
// fault.
func liquidityRisk(inflows, monthlyIncome float64) float64 {
	if monthlyIncome <= 0 {
		return 1.0
	}
	ratio := inflows / monthlyIncome
	return 1.0 - math.Min(ratio/3.0, 1.0)
}

// farmSizeRisk is U-shaped: very small farms carry subsistence volatility,
// very large ones concentration and commodity exposure.
func farmSizeRisk(hectares float64) float64 {
	switch {
	case hectares < 1:
		return 0.30
	case hectares < 10:
		return 0.10
	case hectares < 100:
		return 0.05
	default:
		return 0.15
	}
}

func deviceRisk(trustScore float64) float64 {
	return (100 - trustScore) / 100
}

func identityRisk(consistency float64) float64 {
	return (100 - consistency) / 100
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
