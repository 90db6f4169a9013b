package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"agriflow/bnpl-api/internal/domain"
)

// DecisionRepo is the audit trail of every scored application. The full
// pipeline result is stored as a JSON blob next to a few scalar columns
// used for filtering and portfolio aggregation.
type DecisionRepo struct {
	db *sql.DB
}

func NewDecisionRepo(db *sql.DB) *DecisionRepo {
	return &DecisionRepo{db: db}
}

func (r *DecisionRepo) Save(d *domain.Decision) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal decision: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO decisions
		(id, user_id, region, farm_type, crop_type, late_payment_prob,
		 risk_tier, decision, recommended_product, bnpl_limit,
		 bnpl_tenor_months, payload, processed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.Applicant.UserID, d.Applicant.Region, d.Applicant.FarmType,
		d.Applicant.CropType, d.Assessment.LatePaymentProb,
		d.Assessment.RiskTier, d.Assessment.Decision,
		d.Recommendation.RecommendedProduct, d.Terms.Limit,
		d.Terms.TenorMonths, string(payload),
		d.ProcessedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (r *DecisionRepo) GetByID(id string) (*domain.Decision, error) {
	var payload string
	err := r.db.QueryRow("SELECT payload FROM decisions WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query decision: %w", err)
	}

	var d domain.Decision
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("unmarshal decision %s: %w", id, err)
	}
	return &d, nil
}

// ListRecent returns the most recent decisions, newest first.
func (r *DecisionRepo) ListRecent(limit int) ([]domain.Decision, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		"SELECT payload FROM decisions ORDER BY processed_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []domain.Decision
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var d domain.Decision
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func (r *DecisionRepo) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM decisions").Scan(&count)
	return count, err
}

// Report aggregates the full audit trail into a portfolio snapshot.
func (r *DecisionRepo) Report() (*domain.PortfolioReport, error) {
	report := &domain.PortfolioReport{
		GeneratedAt:     time.Now().UTC(),
		TierCounts:      map[string]int{},
		ProductCounts:   map[string]int{},
		AvgPDByRegion:   map[string]float64{},
		AvgPDByFarmType: map[string]float64{},
	}

	if err := r.countsInto("risk_tier", report.TierCounts); err != nil {
		return nil, err
	}
	if err := r.countsInto("recommended_product", report.ProductCounts); err != nil {
		return nil, err
	}
	if err := r.avgPDInto("region", report.AvgPDByRegion); err != nil {
		return nil, err
	}
	if err := r.avgPDInto("farm_type", report.AvgPDByFarmType); err != nil {
		return nil, err
	}

	pds, err := r.allPDs()
	if err != nil {
		return nil, err
	}
	report.TotalDecisions = len(pds)
	if len(pds) == 0 {
		return report, nil
	}

	var sum float64
	approved := 0
	autoApproved := 0
	for _, pd := range pds {
		sum += pd
		if pd < domain.ThresholdDecline {
			approved++
		}
		if pd < domain.ThresholdLow {
			autoApproved++
		}
	}
	report.MeanPD = sum / float64(len(pds))
	report.MedianPD = median(pds)
	report.ApprovalRate = float64(approved) / float64(len(pds))
	report.AutoApproveRate = float64(autoApproved) / float64(len(pds))

	return report, nil
}

func (r *DecisionRepo) countsInto(column string, dst map[string]int) error {
	rows, err := r.db.Query(
		fmt.Sprintf("SELECT %s, COUNT(*) FROM decisions GROUP BY %s", column, column),
	)
	if err != nil {
		return fmt.Errorf("group by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		dst[key] = count
	}
	return rows.Err()
}

func (r *DecisionRepo) avgPDInto(column string, dst map[string]float64) error {
	rows, err := r.db.Query(
		fmt.Sprintf("SELECT %s, AVG(late_payment_prob) FROM decisions GROUP BY %s", column, column),
	)
	if err != nil {
		return fmt.Errorf("avg by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var avg float64
		if err := rows.Scan(&key, &avg); err != nil {
			return err
		}
		dst[key] = avg
	}
	return rows.Err()
}

func (r *DecisionRepo) allPDs() ([]float64, error) {
	rows, err := r.db.Query("SELECT late_payment_prob FROM decisions")
	if err != nil {
		return nil, fmt.Errorf("query pds: %w", err)
	}
	defer rows.Close()

	var pds []float64
	for rows.Next() {
		var pd float64
		if err := rows.Scan(&pd); err != nil {
			return nil, err
		}
		pds = append(pds, pd)
	}
	return pds, rows.Err()
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
