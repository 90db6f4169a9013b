// Package policy computes BNPL terms: a risk-adjusted credit limit and a
// crop-cycle-aligned repayment tenor for a matched product.
package policy

import (
	"fmt"
	"math"

	"agriflow/bnpl-api/internal/domain"
)

// Limit multiplier constants of the credit policy.
const (
	riskMultiplierFloor = 0.2
	riskSlope           = 2.5 // limit shrinks 2.5x faster than PD grows
	incomeMultiplierCap = 2.5
	incomeReference     = 50000 // monthly income yielding a 1.0x multiplier
)

// Crop-cycle tenor caps in months. Grain must be repayable within one
// harvest; short-season horticulture sooner still.
const (
	grainCycleCap        = 4
	horticultureCycleCap = 3
)

// Terms computes the credit limit and tenor for a matched product given the
// applicant's late-payment probability and financial attributes.
//
// The limit is base_limit x risk x income x tenure multipliers, rounded to
// the nearest 1000 and forced to 0 at or above the decline threshold. The
// tenor starts from the product's base tenor, shrinks with risk, is capped
// by the crop cycle, and never drops below one month.
func Terms(p *domain.ApplicantProfile, product string, pd float64) domain.BNPLTerms {
	info := catalogInfo(product)

	riskMult := math.Max(riskMultiplierFloor, 1-pd*riskSlope)
	incomeMult := math.Min(incomeMultiplierCap, p.MonthlyIncomeEst/incomeReference)
	tenureMult, tenureFactors := tenureMultiplier(p)

	var limit int64
	if pd < domain.ThresholdDecline {
		raw := float64(info.BaseLimit) * riskMult * incomeMult * tenureMult
		limit = roundToThousand(raw)
	}

	tenor, adjustment := riskAdjustedTenor(info.BaseTenor, pd)
	tenor, cropImpact := cropCycleCap(tenor, p.CropType)
	if tenor < 1 {
		tenor = 1
	}

	return domain.BNPLTerms{
		Limit:       limit,
		TenorMonths: tenor,
		Explanation: domain.TermsDetail{
			BaseLimit:        info.BaseLimit,
			RiskMultiplier:   riskMult,
			IncomeMultiplier: incomeMult,
			TenureMultiplier: tenureMult,
			TenureFactors:    tenureFactors,
			BaseTenor:        info.BaseTenor,
			TenorAdjustment:  adjustment,
			CropCycleImpact:  cropImpact,
		},
	}
}

func catalogInfo(product string) domain.ProductInfo {
	if info, ok := domain.Catalog[product]; ok {
		return info
	}
	// Unknown products fall back to mid-range terms.
	return domain.ProductInfo{Name: product, BaseLimit: 50000, BaseTenor: 6}
}

// tenureMultiplier rewards established operations and high device trust.
func tenureMultiplier(p *domain.ApplicantProfile) (float64, []string) {
	mult := 1.0
	var factors []string

	if p.FarmType == domain.FarmCommercial {
		mult *= 1.3
		factors = append(factors, "commercial farm (+30%)")
	}
	if p.YearsExperience > 15 {
		mult *= 1.2
		factors = append(factors, "experienced farmer (+20%)")
	}
	if p.DeviceTrustScore > 85 {
		mult *= 1.1
		factors = append(factors, "high device trust (+10%)")
	}
	if len(factors) == 0 {
		factors = append(factors, "no tenure boosts")
	}
	return mult, factors
}

// riskAdjustedTenor shortens the repayment window as PD rises to reduce
// exposure: -1 month for medium risk, -2 from high risk upward.
func riskAdjustedTenor(baseTenor int, pd float64) (int, string) {
	switch {
	case pd < domain.ThresholdLow:
		return baseTenor, "Low risk: full base tenor"
	case pd < 0.30:
		return baseTenor - 1, "Medium risk: shortened by 1 month"
	default:
		return baseTenor - 2, "Elevated risk: shortened by 2 months"
	}
}

func cropCycleCap(tenor int, crop string) (int, string) {
	switch crop {
	case domain.CropMaize, domain.CropRice:
		if tenor > grainCycleCap {
			return grainCycleCap, fmt.Sprintf("capped at %dmo for grain harvest cycle", grainCycleCap)
		}
	case domain.CropHorticulture:
		if tenor > horticultureCycleCap {
			return horticultureCycleCap, fmt.Sprintf("capped at %dmo for short-season crops", horticultureCycleCap)
		}
	}
	return tenor, "no crop cycle override"
}

func roundToThousand(v float64) int64 {
	return int64(math.Round(v/1000)) * 1000
}
