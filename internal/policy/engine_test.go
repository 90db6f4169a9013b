package policy_test

import (
	"math"
	"testing"

	"agriflow/bnpl-api/internal/domain"
	"agriflow/bnpl-api/internal/policy"
)

func profile(mutate func(*domain.ApplicantProfile)) *domain.ApplicantProfile {
	p := &domain.ApplicantProfile{
		UserID:              "user-001",
		Region:              domain.RegionNorth,
		FarmType:            domain.FarmSmallholder,
		CropType:            domain.CropMaize,
		FarmSizeHa:          3.5,
		YearsExperience:     8,
		MonthlyIncomeEst:    45000,
		RecentCashInflows:   120000,
		AvgOrderValue:       18000,
		DeviceTrustScore:    78,
		IdentityConsistency: 85,
		PriorDefaults:       0,
	}
	if mutate != nil {
		mutate(p)
	}
	return p
}

// ─── Reference terms ──────────────────────────────────────────────────────────

// TestTerms_ReferenceApplicant pins the terms for the reference profile:
// Seeds base 20000 x 0.8423 risk x 0.9 income x 1.0 tenure ≈ 15161 → 15000,
// full 4-month grain tenor at low risk.
func TestTerms_ReferenceApplicant(t *testing.T) {
	terms := policy.Terms(profile(nil), domain.ProductSeeds, 0.0631)

	if terms.Limit != 15000 {
		t.Errorf("limit = %d, want 15000", terms.Limit)
	}
	if terms.TenorMonths != 4 {
		t.Errorf("tenor = %d, want 4", terms.TenorMonths)
	}
	if terms.Explanation.BaseLimit != 20000 {
		t.Errorf("base limit = %d, want 20000", terms.Explanation.BaseLimit)
	}
}

// ─── Limit multipliers ────────────────────────────────────────────────────────

func TestTerms_RiskMultiplierFloor(t *testing.T) {
	// At PD 0.45 the raw multiplier 1 - 0.45*2.5 = -0.125 hits the 0.2 floor.
	terms := policy.Terms(profile(nil), domain.ProductSeeds, 0.45)
	if terms.Explanation.RiskMultiplier != 0.2 {
		t.Errorf("risk multiplier = %f, want floor 0.2", terms.Explanation.RiskMultiplier)
	}
	if terms.Limit == 0 {
		t.Error("limit should be positive below the decline threshold")
	}
}

func TestTerms_IncomeMultiplierCapped(t *testing.T) {
	p := profile(func(p *domain.ApplicantProfile) { p.MonthlyIncomeEst = 400000 })
	terms := policy.Terms(p, domain.ProductSeeds, 0.05)
	if terms.Explanation.IncomeMultiplier != 2.5 {
		t.Errorf("income multiplier = %f, want cap 2.5", terms.Explanation.IncomeMultiplier)
	}
}

func TestTerms_TenureBoostsStack(t *testing.T) {
	p := profile(func(p *domain.ApplicantProfile) {
		p.FarmType = domain.FarmCommercial
		p.YearsExperience = 20
		p.DeviceTrustScore = 90
	})
	terms := policy.Terms(p, domain.ProductEquipment, 0.05)

	want := 1.3 * 1.2 * 1.1
	if math.Abs(terms.Explanation.TenureMultiplier-want) > 1e-9 {
		t.Errorf("tenure multiplier = %f, want %f", terms.Explanation.TenureMultiplier, want)
	}
	if len(terms.Explanation.TenureFactors) != 3 {
		t.Errorf("tenure factors = %v, want 3 entries", terms.Explanation.TenureFactors)
	}
}

func TestTerms_NoTenureBoosts(t *testing.T) {
	terms := policy.Terms(profile(nil), domain.ProductSeeds, 0.05)
	if terms.Explanation.TenureMultiplier != 1.0 {
		t.Errorf("tenure multiplier = %f, want 1.0", terms.Explanation.TenureMultiplier)
	}
}

func TestTerms_LimitRoundedToThousand(t *testing.T) {
	terms := policy.Terms(profile(nil), domain.ProductSeeds, 0.0631)
	if terms.Limit%1000 != 0 {
		t.Errorf("limit %d not rounded to nearest 1000", terms.Limit)
	}
}

// ─── Decline behaviour ────────────────────────────────────────────────────────

func TestTerms_DeclinedApplicantGetsZeroLimit(t *testing.T) {
	cases := []float64{0.50, 0.65, 0.99}
	for _, pd := range cases {
		terms := policy.Terms(profile(nil), domain.ProductSeeds, pd)
		if terms.Limit != 0 {
			t.Errorf("PD=%f: limit = %d, want 0", pd, terms.Limit)
		}
		// Tenor still reflects the shortened schedule, never zero.
		if terms.TenorMonths < 1 {
			t.Errorf("PD=%f: tenor = %d, want >= 1", pd, terms.TenorMonths)
		}
	}
}

// ─── Tenor schedule ───────────────────────────────────────────────────────────

func TestTerms_TenorRiskAdjustment(t *testing.T) {
	cases := []struct {
		pd   float64
		want int // equipment base 12, livestock (no crop cap)
	}{
		{0.05, 12},  // low risk, full tenor
		{0.1499, 12},
		{0.15, 11},  // medium risk, -1
		{0.2999, 11},
		{0.30, 10},  // elevated risk, -2
		{0.49, 10},
	}
	p := profile(func(p *domain.ApplicantProfile) { p.CropType = domain.CropLivestock })
	for _, c := range cases {
		terms := policy.Terms(p, domain.ProductEquipment, c.pd)
		if terms.TenorMonths != c.want {
			t.Errorf("PD=%f: tenor = %d, want %d", c.pd, terms.TenorMonths, c.want)
		}
	}
}

func TestTerms_CropCycleCaps(t *testing.T) {
	// Grain is capped at 4 months even for a 12-month equipment lease.
	grain := profile(func(p *domain.ApplicantProfile) { p.CropType = domain.CropMaize })
	terms := policy.Terms(grain, domain.ProductEquipment, 0.05)
	if terms.TenorMonths != 4 {
		t.Errorf("grain tenor = %d, want 4", terms.TenorMonths)
	}

	// Horticulture is capped at 3 months.
	hort := profile(func(p *domain.ApplicantProfile) { p.CropType = domain.CropHorticulture })
	terms = policy.Terms(hort, domain.ProductInput, 0.05)
	if terms.TenorMonths != 3 {
		t.Errorf("horticulture tenor = %d, want 3", terms.TenorMonths)
	}

	// Other crops keep the base tenor.
	mixed := profile(func(p *domain.ApplicantProfile) { p.CropType = domain.CropMixed })
	terms = policy.Terms(mixed, domain.ProductInput, 0.05)
	if terms.TenorMonths != 6 {
		t.Errorf("mixed tenor = %d, want 6", terms.TenorMonths)
	}
}

func TestTerms_TenorNeverBelowOne(t *testing.T) {
	// Cash advance base tenor 2 with -2 risk adjustment floors at 1.
	terms := policy.Terms(profile(nil), domain.ProductCash, 0.45)
	if terms.TenorMonths != 1 {
		t.Errorf("tenor = %d, want floor 1", terms.TenorMonths)
	}
}

func TestTerms_UnknownProductFallsBack(t *testing.T) {
	terms := policy.Terms(profile(nil), "Mystery_Product", 0.05)
	if terms.Explanation.BaseLimit != 50000 {
		t.Errorf("fallback base limit = %d, want 50000", terms.Explanation.BaseLimit)
	}
	// Maize crop still caps the fallback 6-month tenor at 4.
	if terms.TenorMonths != 4 {
		t.Errorf("fallback tenor = %d, want 4", terms.TenorMonths)
	}
}
