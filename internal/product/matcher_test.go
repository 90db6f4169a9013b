package product_test

import (
	"testing"

	"agriflow/bnpl-api/internal/domain"
	"agriflow/bnpl-api/internal/product"
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
		DeviceTrustScore:    60,
		IdentityConsistency: 85,
		PriorDefaults:       0,
	}
	if mutate != nil {
		mutate(p)
	}
	return p
}

// ─── Primary recommendation: priority order ───────────────────────────────────

func TestMatch_PrimaryProduct(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.ApplicantProfile)
		want   string
	}{
		{
			"commercial large order gets equipment lease",
			func(p *domain.ApplicantProfile) {
				p.FarmType = domain.FarmCommercial
				p.AvgOrderValue = 120000
			},
			domain.ProductEquipment,
		},
		{
			"small order trusted device gets cash advance",
			func(p *domain.ApplicantProfile) {
				p.AvgOrderValue = 8000
				p.DeviceTrustScore = 85
			},
			domain.ProductCash,
		},
		{
			"maize moderate order gets seeds",
			func(p *domain.ApplicantProfile) {
				p.CropType = domain.CropMaize
				p.AvgOrderValue = 18000
			},
			domain.ProductSeeds,
		},
		{
			"rice qualifies for seeds too",
			func(p *domain.ApplicantProfile) {
				p.CropType = domain.CropRice
				p.AvgOrderValue = 25000
			},
			domain.ProductSeeds,
		},
		{
			"vegetables get fertilizer",
			func(p *domain.ApplicantProfile) {
				p.CropType = domain.CropVegetables
				p.AvgOrderValue = 40000
			},
			domain.ProductFertilizer,
		},
		{
			"mixed farm with trusted device gets input bundle",
			func(p *domain.ApplicantProfile) {
				p.CropType = domain.CropMixed
				p.AvgOrderValue = 60000
				p.DeviceTrustScore = 65
			},
			domain.ProductInput,
		},
		{
			"nothing matches falls back to premium",
			func(p *domain.ApplicantProfile) {
				p.CropType = domain.CropLivestock
				p.AvgOrderValue = 60000
				p.DeviceTrustScore = 55
			},
			domain.ProductPremium,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := product.Match(profile(c.mutate))
			if rec.RecommendedProduct != c.want {
				t.Errorf("primary = %s, want %s", rec.RecommendedProduct, c.want)
			}
		})
	}
}

// ─── Priority boundaries ──────────────────────────────────────────────────────

func TestMatch_BoundariesAreStrict(t *testing.T) {
	// An order of exactly 80000 does not qualify for the equipment lease.
	rec := product.Match(profile(func(p *domain.ApplicantProfile) {
		p.FarmType = domain.FarmCommercial
		p.AvgOrderValue = 80000
		p.DeviceTrustScore = 50
	}))
	if rec.RecommendedProduct == domain.ProductEquipment {
		t.Error("order=80000 should not match equipment lease")
	}

	// An order of exactly 15000 does not qualify for the cash advance.
	rec = product.Match(profile(func(p *domain.ApplicantProfile) {
		p.AvgOrderValue = 15000
		p.DeviceTrustScore = 90
	}))
	if rec.RecommendedProduct == domain.ProductCash {
		t.Error("order=15000 should not match cash advance")
	}

	// Device trust of exactly 70 does not qualify for the cash advance.
	rec = product.Match(profile(func(p *domain.ApplicantProfile) {
		p.AvgOrderValue = 8000
		p.DeviceTrustScore = 70
		p.CropType = domain.CropLivestock
	}))
	if rec.RecommendedProduct == domain.ProductCash {
		t.Error("trust=70 should not match cash advance")
	}
}

// Cash advance outranks seeds in the priority list: a maize farmer with a
// small order and trusted device gets the cash advance, not seed financing.
func TestMatch_CashAdvanceOutranksSeeds(t *testing.T) {
	rec := product.Match(profile(func(p *domain.ApplicantProfile) {
		p.CropType = domain.CropMaize
		p.AvgOrderValue = 9000
		p.DeviceTrustScore = 80
	}))
	if rec.RecommendedProduct != domain.ProductCash {
		t.Errorf("primary = %s, want Cash_Advance", rec.RecommendedProduct)
	}
}

// ─── Top-3 ranking ────────────────────────────────────────────────────────────

func TestMatch_Top3(t *testing.T) {
	rec := product.Match(profile(nil))

	if len(rec.Top3Products) == 0 || rec.Top3Products[0] != rec.RecommendedProduct {
		t.Fatalf("primary must hold rank 1, got %v", rec.Top3Products)
	}
	if len(rec.Top3Products) > 3 {
		t.Errorf("top-3 list has %d entries", len(rec.Top3Products))
	}

	seen := map[string]bool{}
	for _, prod := range rec.Top3Products {
		if seen[prod] {
			t.Errorf("duplicate product %s in top-3", prod)
		}
		seen[prod] = true
		if _, ok := domain.Catalog[prod]; !ok {
			t.Errorf("unknown product %s in top-3", prod)
		}
	}
}

func TestMatch_Top3AlwaysContainsPremiumFallback(t *testing.T) {
	// A profile matching only the fallback gets a single-entry list.
	rec := product.Match(profile(func(p *domain.ApplicantProfile) {
		p.CropType = domain.CropLivestock
		p.AvgOrderValue = 60000
		p.DeviceTrustScore = 40
	}))
	if len(rec.Top3Products) != 1 || rec.Top3Products[0] != domain.ProductPremium {
		t.Errorf("top-3 = %v, want [Premium_BNPL]", rec.Top3Products)
	}
}

func TestMatch_AlternativesRankedByScore(t *testing.T) {
	// Maize smallholder, order 9000, trust 85: cash wins on priority, then
	// seeds 100+3+2=105 ranks over premium 50+2.
	rec := product.Match(profile(func(p *domain.ApplicantProfile) {
		p.AvgOrderValue = 9000
		p.DeviceTrustScore = 85
	}))

	want := []string{domain.ProductCash, domain.ProductSeeds, domain.ProductPremium}
	if len(rec.Top3Products) != 3 {
		t.Fatalf("top-3 = %v, want 3 entries", rec.Top3Products)
	}
	for i, p := range want {
		if rec.Top3Products[i] != p {
			t.Errorf("top-3[%d] = %s, want %s", i, rec.Top3Products[i], p)
		}
	}
}

// ─── Determinism and reason ───────────────────────────────────────────────────

func TestMatch_Deterministic(t *testing.T) {
	p := profile(nil)
	first := product.Match(p)
	for i := 0; i < 10; i++ {
		if got := product.Match(p); got.RecommendedProduct != first.RecommendedProduct {
			t.Fatalf("run %d: primary changed from %s to %s",
				i, first.RecommendedProduct, got.RecommendedProduct)
		}
	}
}

func TestMatch_ReasonMentionsCropAndProduct(t *testing.T) {
	rec := product.Match(profile(nil))
	if rec.MatchReason == "" {
		t.Fatal("match reason is empty")
	}
}
