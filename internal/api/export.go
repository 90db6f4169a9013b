package api

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"agriflow/bnpl-api/internal/domain"
)

// writeDecisionsCSV flattens decisions into one row per applicant for
// offline analysis in spreadsheets or notebooks.
func writeDecisionsCSV(w io.Writer, decisions []domain.Decision) error {
	cw := csv.NewWriter(w)

	header := []string{
		"decision_id", "user_id", "region", "farm_type", "crop_type",
		"linear_risk_score", "late_payment_prob", "risk_tier", "decision",
		"recommended_product", "bnpl_limit", "bnpl_tenor_months", "processed_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, d := range decisions {
		row := []string{
			d.ID,
			d.Applicant.UserID,
			d.Applicant.Region,
			d.Applicant.FarmType,
			d.Applicant.CropType,
			strconv.FormatFloat(d.Assessment.LinearRiskScore, 'f', 6, 64),
			strconv.FormatFloat(d.Assessment.LatePaymentProb, 'f', 6, 64),
			d.Assessment.RiskTier,
			d.Assessment.Decision,
			d.Recommendation.RecommendedProduct,
			strconv.FormatInt(d.Terms.Limit, 10),
			strconv.Itoa(d.Terms.TenorMonths),
			d.ProcessedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
