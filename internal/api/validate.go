package api

import (
	"fmt"

	"agriflow/bnpl-api/internal/domain"
)

// Field bounds enforced at the API boundary. The engines assume every
// profile they see has already passed these checks.
const (
	minFarmSizeHa = 0.5
	maxFarmSizeHa = 500.0
	maxExperience = 40
	minIncome     = 5000.0
	maxIncome     = 500000.0
	maxInflows    = 1000000.0
	minOrderValue = 1000.0
	maxOrderValue = 200000.0
	maxDefaults   = 5
)

func validateProfile(p *domain.ApplicantProfile) error {
	if p.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if !contains(domain.ValidRegions, p.Region) {
		return fmt.Errorf("region must be one of: North, South, East, West, Central")
	}
	if !contains(domain.ValidFarmTypes, p.FarmType) {
		return fmt.Errorf("farm_type must be one of: smallholder, commercial, cooperative")
	}
	if !contains(domain.ValidCrops, p.CropType) {
		return fmt.Errorf("crop_type must be one of: maize, rice, vegetables, livestock, mixed, horticulture")
	}
	if p.FarmSizeHa < minFarmSizeHa || p.FarmSizeHa > maxFarmSizeHa {
		return fmt.Errorf("farm_size_ha must be between %.1f and %.0f", minFarmSizeHa, maxFarmSizeHa)
	}
	if p.YearsExperience < 0 || p.YearsExperience > maxExperience {
		return fmt.Errorf("years_experience must be between 0 and %d", maxExperience)
	}
	if p.MonthlyIncomeEst < minIncome || p.MonthlyIncomeEst > maxIncome {
		return fmt.Errorf("monthly_income_est must be between %.0f and %.0f", minIncome, maxIncome)
	}
	if p.RecentCashInflows < 0 || p.RecentCashInflows > maxInflows {
		return fmt.Errorf("recent_cash_inflows must be between 0 and %.0f", maxInflows)
	}
	if p.AvgOrderValue < minOrderValue || p.AvgOrderValue > maxOrderValue {
		return fmt.Errorf("avg_order_value must be between %.0f and %.0f", minOrderValue, maxOrderValue)
	}
	if p.DeviceTrustScore < 0 || p.DeviceTrustScore > 100 {
		return fmt.Errorf("device_trust_score must be between 0 and 100")
	}
	if p.IdentityConsistency < 0 || p.IdentityConsistency > 100 {
		return fmt.Errorf("identity_consistency must be between 0 and 100")
	}
	if p.PriorDefaults < 0 || p.PriorDefaults > maxDefaults {
		return fmt.Errorf("prior_defaults must be between 0 and %d", maxDefaults)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
