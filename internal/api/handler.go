package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agriflow/bnpl-api/internal/domain"
	"agriflow/bnpl-api/internal/metrics"
	"agriflow/bnpl-api/internal/policy"
	"agriflow/bnpl-api/internal/product"
	"agriflow/bnpl-api/internal/scoring"
	"agriflow/bnpl-api/internal/store"
	"agriflow/bnpl-api/internal/webhook"
)

// Handler holds the dependencies shared across all HTTP handlers.
type Handler struct {
	decisions *store.DecisionRepo
	webhooks  *store.WebhookRepo
	notifier  *webhook.Notifier
	log       *zap.Logger
}

// NewHandler creates a Handler wired to the given dependencies.
func NewHandler(d *store.DecisionRepo, wh *store.WebhookRepo, n *webhook.Notifier, log *zap.Logger) *Handler {
	return &Handler{decisions: d, webhooks: wh, notifier: n, log: log.Named("api")}
}

// RunPipeline runs score, match, and terms for one applicant and assembles
// the audit record.
func RunPipeline(p *domain.ApplicantProfile) *domain.Decision {
	start := time.Now()

	assessment := scoring.Score(p)
	recommendation := product.Match(p)
	terms := policy.Terms(p, recommendation.RecommendedProduct, assessment.LatePaymentProb)

	metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	metrics.ApplicationsScored.WithLabelValues(assessment.RiskTier, assessment.Decision).Inc()
	metrics.ProductsRecommended.WithLabelValues(recommendation.RecommendedProduct).Inc()

	return &domain.Decision{
		ID:             uuid.NewString(),
		Applicant:      *p,
		Assessment:     assessment,
		Recommendation: recommendation,
		Terms:          terms,
		ProcessedAt:    time.Now().UTC(),
	}
}

// ─── POST /api/v1/score ───────────────────────────────────────────────────────

// scoreResponse is the assessment-focused view returned by the score
// endpoint. The full record (product, terms) is available via the decision
// lookup or the recommendations endpoint.
type scoreResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	Assessment  domain.RiskAssessment `json:"assessment"`
	ProcessedAt time.Time             `json:"processed_at"`
}

// ScoreApplication accepts an applicant profile, runs the full pipeline,
// persists the audit decision, and returns the risk assessment with its
// top contributing factors.
func (h *Handler) ScoreApplication(w http.ResponseWriter, r *http.Request) {
	decision, ok := h.scoreRequest(w, r)
	if !ok {
		return
	}

	created(w, scoreResponse{
		ID:          decision.ID,
		UserID:      decision.Applicant.UserID,
		Assessment:  decision.Assessment,
		ProcessedAt: decision.ProcessedAt,
	})
}

// ─── POST /api/v1/recommendations ────────────────────────────────────────────

// RecommendProducts runs the full pipeline and returns the complete
// decision: assessment, matched product with alternatives, and BNPL terms.
func (h *Handler) RecommendProducts(w http.ResponseWriter, r *http.Request) {
	decision, ok := h.scoreRequest(w, r)
	if !ok {
		return
	}
	created(w, decision)
}

// scoreRequest is the shared body of the two synchronous scoring endpoints:
// decode, validate, run the pipeline, persist, and fire webhook alerts.
// A false return means the response has already been written.
func (h *Handler) scoreRequest(w http.ResponseWriter, r *http.Request) (*domain.Decision, bool) {
	var profile domain.ApplicantProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return nil, false
	}

	if err := validateProfile(&profile); err != nil {
		badRequest(w, "VALIDATION_ERROR", err.Error())
		return nil, false
	}

	decision := RunPipeline(&profile)

	if err := h.decisions.Save(decision); err != nil {
		h.log.Error("save decision failed", zap.Error(err))
		internalError(w)
		return nil, false
	}

	// Fire async webhook notifications for high-risk applications.
	h.notifier.NotifyAsync(decision)

	return decision, true
}

// ─── POST /api/v1/batch ───────────────────────────────────────────────────────

// batchSummary aggregates a batch scoring run.
type batchSummary struct {
	Processed      int               `json:"processed"`
	Rejected       int               `json:"rejected"`
	TierCounts     map[string]int    `json:"tier_counts"`
	DecisionCounts map[string]int    `json:"decision_counts"`
	Decisions      []domain.Decision `json:"decisions"`
}

const maxBatchSize = 500

// ScoreBatch scores an array of applicant profiles in one call. Invalid
// profiles are counted but do not abort the batch.
func (h *Handler) ScoreBatch(w http.ResponseWriter, r *http.Request) {
	var profiles []domain.ApplicantProfile
	if err := json.NewDecoder(r.Body).Decode(&profiles); err != nil {
		badRequest(w, "INVALID_JSON", "body must be a JSON array of applicant profiles")
		return
	}
	if len(profiles) == 0 {
		badRequest(w, "EMPTY_BATCH", "batch must contain at least one profile")
		return
	}
	if len(profiles) > maxBatchSize {
		badRequest(w, "BATCH_TOO_LARGE", fmt.Sprintf("batch size limited to %d profiles", maxBatchSize))
		return
	}

	summary := batchSummary{
		TierCounts:     map[string]int{},
		DecisionCounts: map[string]int{},
		Decisions:      []domain.Decision{},
	}

	for i := range profiles {
		p := &profiles[i]
		if err := validateProfile(p); err != nil {
			summary.Rejected++
			continue
		}

		decision := RunPipeline(p)
		if err := h.decisions.Save(decision); err != nil {
			h.log.Error("save batch decision failed",
				zap.String("user_id", p.UserID), zap.Error(err))
			summary.Rejected++
			continue
		}

		h.notifier.NotifyAsync(decision)
		summary.Processed++
		summary.TierCounts[decision.Assessment.RiskTier]++
		summary.DecisionCounts[decision.Assessment.Decision]++
		summary.Decisions = append(summary.Decisions, *decision)
	}

	ok(w, summary)
}

// ─── GET /api/v1/decisions/{id} ───────────────────────────────────────────────

// GetDecision retrieves a previously audited decision by its ID.
func (h *Handler) GetDecision(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	decision, err := h.decisions.GetByID(id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, fmt.Sprintf("decision '%s' not found", id))
		return
	}
	if err != nil {
		h.log.Error("get decision failed", zap.String("id", id), zap.Error(err))
		internalError(w)
		return
	}
	ok(w, decision)
}

// ─── GET /api/v1/decisions ────────────────────────────────────────────────────

// ListDecisions returns the most recent decisions, newest first.
//
// Query params:
//
//	limit — number of decisions to return (default: 50, max: 500)
func (h *Handler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 || parsed > 500 {
			badRequest(w, "INVALID_PARAM", "limit must be an integer between 1 and 500")
			return
		}
		limit = parsed
	}

	decisions, err := h.decisions.ListRecent(limit)
	if err != nil {
		h.log.Error("list decisions failed", zap.Error(err))
		internalError(w)
		return
	}
	if decisions == nil {
		decisions = []domain.Decision{}
	}
	ok(w, decisions)
}

// ─── GET /api/v1/reports/portfolio ────────────────────────────────────────────

// GetPortfolioReport aggregates the full audit trail into a portfolio snapshot.
func (h *Handler) GetPortfolioReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.decisions.Report()
	if err != nil {
		h.log.Error("portfolio report failed", zap.Error(err))
		internalError(w)
		return
	}
	ok(w, report)
}

// ─── GET /api/v1/export/decisions.csv ─────────────────────────────────────────

// ExportDecisionsCSV streams recent decisions as CSV for offline analysis.
func (h *Handler) ExportDecisionsCSV(w http.ResponseWriter, r *http.Request) {
	decisions, err := h.decisions.ListRecent(500)
	if err != nil {
		h.log.Error("export decisions failed", zap.Error(err))
		internalError(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="decisions.csv"`)
	if err := writeDecisionsCSV(w, decisions); err != nil {
		h.log.Error("write decisions csv failed", zap.Error(err))
	}
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// RegisterWebhook adds a new webhook endpoint for high-risk alerts.
func (h *Handler) RegisterWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL         string  `json:"url"`
		PDThreshold float64 `json:"pd_threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "INVALID_JSON", "request body must be valid JSON")
		return
	}
	if req.URL == "" {
		badRequest(w, "MISSING_URL", "url is required")
		return
	}
	if req.PDThreshold < 0 || req.PDThreshold > 1 {
		badRequest(w, "INVALID_THRESHOLD", "pd_threshold must be between 0 and 1")
		return
	}
	if req.PDThreshold == 0 {
		req.PDThreshold = domain.ThresholdMedium
	}

	wh := &domain.WebhookConfig{
		ID:          uuid.NewString(),
		URL:         req.URL,
		PDThreshold: req.PDThreshold,
		CreatedAt:   time.Now().UTC(),
		Active:      true,
	}
	if err := h.webhooks.Insert(wh); err != nil {
		h.log.Error("register webhook failed", zap.Error(err))
		internalError(w)
		return
	}
	created(w, wh)
}

// DeleteWebhook deactivates a webhook.
func (h *Handler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.webhooks.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		notFound(w, fmt.Sprintf("webhook '%s' not found", id))
		return
	}
	if err != nil {
		h.log.Error("delete webhook failed", zap.String("id", id), zap.Error(err))
		internalError(w)
		return
	}
	noContent(w)
}

// ─── GET /api/v1/products ─────────────────────────────────────────────────────

// ListProducts returns the static product catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ok(w, domain.Catalog)
}
