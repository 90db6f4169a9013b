package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"agriflow/bnpl-api/internal/domain"
)

// csvHeader is the canonical dataset column order.
var csvHeader = []string{
	"user_id", "region", "farm_type", "crop_type", "farm_size_ha",
	"years_experience", "monthly_income_est", "recent_cash_inflows",
	"avg_order_value", "device_trust_score", "identity_consistency",
	"prior_defaults", "true_preferred_product",
}

// WriteCSV encodes labeled profiles in the canonical dataset format.
func WriteCSV(w io.Writer, profiles []LabeledProfile) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, p := range profiles {
		row := []string{
			p.UserID,
			p.Region,
			p.FarmType,
			p.CropType,
			strconv.FormatFloat(p.FarmSizeHa, 'f', 2, 64),
			strconv.Itoa(p.YearsExperience),
			strconv.FormatFloat(p.MonthlyIncomeEst, 'f', 2, 64),
			strconv.FormatFloat(p.RecentCashInflows, 'f', 2, 64),
			strconv.FormatFloat(p.AvgOrderValue, 'f', 2, 64),
			strconv.FormatFloat(p.DeviceTrustScore, 'f', 2, 64),
			strconv.FormatFloat(p.IdentityConsistency, 'f', 2, 64),
			strconv.Itoa(p.PriorDefaults),
			p.TruePreferredProduct,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", p.UserID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads a dataset in the canonical format. The ground-truth label
// column is optional so plain applicant exports can be loaded too.
func ParseCSV(data []byte) ([]LabeledProfile, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(csvHeader)-1 {
		return nil, fmt.Errorf("expected at least %d columns, got %d", len(csvHeader)-1, len(header))
	}

	var profiles []LabeledProfile
	lineNum := 1

	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		p, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

func parseRow(row []string) (LabeledProfile, error) {
	var p LabeledProfile

	farmSize, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil {
		return p, fmt.Errorf("farm_size_ha: %w", err)
	}
	experience, err := strconv.Atoi(strings.TrimSpace(row[5]))
	if err != nil {
		return p, fmt.Errorf("years_experience: %w", err)
	}
	income, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
	if err != nil {
		return p, fmt.Errorf("monthly_income_est: %w", err)
	}
	inflows, err := strconv.ParseFloat(strings.TrimSpace(row[7]), 64)
	if err != nil {
		return p, fmt.Errorf("recent_cash_inflows: %w", err)
	}
	order, err := strconv.ParseFloat(strings.TrimSpace(row[8]), 64)
	if err != nil {
		return p, fmt.Errorf("avg_order_value: %w", err)
	}
	trust, err := strconv.ParseFloat(strings.TrimSpace(row[9]), 64)
	if err != nil {
		return p, fmt.Errorf("device_trust_score: %w", err)
	}
	identity, err := strconv.ParseFloat(strings.TrimSpace(row[10]), 64)
	if err != nil {
		return p, fmt.Errorf("identity_consistency: %w", err)
	}
	defaults, err := strconv.Atoi(strings.TrimSpace(row[11]))
	if err != nil {
		return p, fmt.Errorf("prior_defaults: %w", err)
	}

	p.ApplicantProfile = domain.ApplicantProfile{
		UserID:              strings.TrimSpace(row[0]),
		Region:              strings.TrimSpace(row[1]),
		FarmType:            strings.TrimSpace(row[2]),
		CropType:            strings.TrimSpace(row[3]),
		FarmSizeHa:          farmSize,
		YearsExperience:     experience,
		MonthlyIncomeEst:    income,
		RecentCashInflows:   inflows,
		AvgOrderValue:       order,
		DeviceTrustScore:    trust,
		IdentityConsistency: identity,
		PriorDefaults:       defaults,
	}
	if len(row) > 12 {
		p.TruePreferredProduct = strings.TrimSpace(row[12])
	}
	return p, nil
}
