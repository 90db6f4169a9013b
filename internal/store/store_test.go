package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriflow/bnpl-api/internal/domain"
	"agriflow/bnpl-api/internal/store"
)

func newRepos(t *testing.T) (*store.DecisionRepo, *store.WebhookRepo) {
	t.Helper()
	db, err := store.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.NewDecisionRepo(db), store.NewWebhookRepo(db)
}

func sampleDecision(id, userID string, pd float64, tier string) *domain.Decision {
	return &domain.Decision{
		ID: id,
		Applicant: domain.ApplicantProfile{
			UserID:              userID,
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
		},
		Assessment: domain.RiskAssessment{
			LinearRiskScore: 0.17,
			LatePaymentProb: pd,
			RiskTier:        tier,
			Decision:        domain.DecisionAutoApprove,
		},
		Recommendation: domain.ProductRecommendation{
			RecommendedProduct: domain.ProductSeeds,
			Top3Products:       []string{domain.ProductSeeds, domain.ProductPremium},
			MatchReason:        "Seed financing for maize/rice farmers - maize crop",
		},
		Terms: domain.BNPLTerms{
			Limit:       15000,
			TenorMonths: 4,
		},
		ProcessedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// ─── Decisions ────────────────────────────────────────────────────────────────

func TestDecisionRepo_SaveAndGet(t *testing.T) {
	decisions, _ := newRepos(t)

	d := sampleDecision("dec-1", "user-1", 0.063, domain.TierLow)
	require.NoError(t, decisions.Save(d))

	got, err := decisions.GetByID("dec-1")
	require.NoError(t, err)
	assert.Equal(t, d.Applicant.UserID, got.Applicant.UserID)
	assert.Equal(t, d.Assessment.RiskTier, got.Assessment.RiskTier)
	assert.Equal(t, d.Recommendation.Top3Products, got.Recommendation.Top3Products)
	assert.Equal(t, d.Terms.Limit, got.Terms.Limit)
}

func TestDecisionRepo_GetMissing(t *testing.T) {
	decisions, _ := newRepos(t)
	_, err := decisions.GetByID("nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDecisionRepo_ListRecent(t *testing.T) {
	decisions, _ := newRepos(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		d := sampleDecision(
			string(rune('a'+i)), "user", 0.1, domain.TierLow)
		d.ProcessedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, decisions.Save(d))
	}

	got, err := decisions.ListRecent(3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Newest first.
	assert.Equal(t, "e", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
	assert.Equal(t, "c", got[2].ID)

	count, err := decisions.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestDecisionRepo_Report(t *testing.T) {
	decisions, _ := newRepos(t)

	fixtures := []struct {
		id   string
		pd   float64
		tier string
	}{
		{"d1", 0.05, domain.TierLow},
		{"d2", 0.10, domain.TierLow},
		{"d3", 0.20, domain.TierMedium},
		{"d4", 0.40, domain.TierHigh},
		{"d5", 0.60, domain.TierDecline},
	}
	for _, f := range fixtures {
		require.NoError(t, decisions.Save(sampleDecision(f.id, "u-"+f.id, f.pd, f.tier)))
	}

	report, err := decisions.Report()
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalDecisions)
	assert.Equal(t, 2, report.TierCounts[domain.TierLow])
	assert.Equal(t, 1, report.TierCounts[domain.TierDecline])
	assert.Equal(t, 5, report.ProductCounts[domain.ProductSeeds])
	assert.InDelta(t, 0.27, report.MeanPD, 1e-9)
	assert.InDelta(t, 0.20, report.MedianPD, 1e-9)
	assert.InDelta(t, 0.8, report.ApprovalRate, 1e-9)    // 4 of 5 below 0.50
	assert.InDelta(t, 0.4, report.AutoApproveRate, 1e-9) // 2 of 5 below 0.15
	assert.InDelta(t, 0.27, report.AvgPDByRegion[domain.RegionNorth], 1e-9)
	assert.InDelta(t, 0.27, report.AvgPDByFarmType[domain.FarmSmallholder], 1e-9)
}

func TestDecisionRepo_ReportEmpty(t *testing.T) {
	decisions, _ := newRepos(t)
	report, err := decisions.Report()
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalDecisions)
	assert.Zero(t, report.MeanPD)
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

func TestWebhookRepo_Lifecycle(t *testing.T) {
	_, webhooks := newRepos(t)

	wh := &domain.WebhookConfig{
		ID:          "wh-1",
		URL:         "https://alerts.example.com/hook",
		PDThreshold: 0.35,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Active:      true,
	}
	require.NoError(t, webhooks.Insert(wh))

	active, err := webhooks.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, wh.URL, active[0].URL)
	assert.InDelta(t, 0.35, active[0].PDThreshold, 1e-9)

	require.NoError(t, webhooks.Delete("wh-1"))

	active, err = webhooks.ListActive()
	require.NoError(t, err)
	assert.Empty(t, active)

	// Deleting again reports not found.
	assert.ErrorIs(t, webhooks.Delete("wh-1"), store.ErrNotFound)
}
