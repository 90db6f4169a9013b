// Package domain contains all core types used across the application.
// Keeping domain types in one place makes the scoring and policy rules easy to reason about.
package domain

import "time"

// ─── Enums ────────────────────────────────────────────────────────────────────

// Regions served by the platform.
const (
	RegionNorth   = "North"
	RegionSouth   = "South"
	RegionEast    = "East"
	RegionWest    = "West"
	RegionCentral = "Central"
)

// Farm operation types.
const (
	FarmSmallholder = "smallholder"
	FarmCommercial  = "commercial"
	FarmCooperative = "cooperative"
)

// Crop types; they drive both product matching and tenor crop-cycle caps.
const (
	CropMaize        = "maize"
	CropRice         = "rice"
	CropVegetables   = "vegetables"
	CropLivestock    = "livestock"
	CropMixed        = "mixed"
	CropHorticulture = "horticulture"
)

// Risk tiers, a coarse bucketing of late-payment probability.
const (
	TierLow     = "Low"     // PD < 0.15
	TierMedium  = "Medium"  // 0.15 <= PD < 0.35
	TierHigh    = "High"    // 0.35 <= PD < 0.50
	TierDecline = "Decline" // PD >= 0.50
)

// Decisions follow risk tiers 1:1.
const (
	DecisionAutoApprove  = "auto_approve"
	DecisionReducedLimit = "reduced_limit"
	DecisionManualReview = "manual_review"
	DecisionAutoDecline  = "auto_decline"
)

// BNPL products, in catalog order.
const (
	ProductSeeds      = "Seeds_BNPL"
	ProductFertilizer = "Fertilizer_BNPL"
	ProductEquipment  = "Equipment_Lease"
	ProductInput      = "Input_Bundle"
	ProductCash       = "Cash_Advance"
	ProductPremium    = "Premium_BNPL"
)

// ─── Risk thresholds ──────────────────────────────────────────────────────────

// Late-payment probability thresholds for tier assignment. Boundaries are
// lower-inclusive: a PD of exactly 0.15 is Medium, exactly 0.50 is Decline.
const (
	ThresholdLow     = 0.15
	ThresholdMedium  = 0.35
	ThresholdDecline = 0.50
)

// Validation lists backing the API boundary checks.
var (
	ValidRegions   = []string{RegionNorth, RegionSouth, RegionEast, RegionWest, RegionCentral}
	ValidFarmTypes = []string{FarmSmallholder, FarmCommercial, FarmCooperative}
	ValidCrops     = []string{CropMaize, CropRice, CropVegetables, CropLivestock, CropMixed, CropHorticulture}
)

// ─── Core domain types ────────────────────────────────────────────────────────

// ApplicantProfile is the payload submitted per financing application.
// All fields are required; bounds are enforced at the API boundary so the
// engines can treat every profile as valid.
type ApplicantProfile struct {
	UserID              string  `json:"user_id"`
	Region              string  `json:"region"`
	FarmType            string  `json:"farm_type"`
	CropType            string  `json:"crop_type"`
	FarmSizeHa          float64 `json:"farm_size_ha"`         // hectares, 0.5-500
	YearsExperience     int     `json:"years_experience"`     // 0-40
	MonthlyIncomeEst    float64 `json:"monthly_income_est"`   // 5000-500000
	RecentCashInflows   float64 `json:"recent_cash_inflows"`  // inflows over last 90 days
	AvgOrderValue       float64 `json:"avg_order_value"`      // 1000-200000
	DeviceTrustScore    float64 `json:"device_trust_score"`   // 0-100
	IdentityConsistency float64 `json:"identity_consistency"` // 0-100
	PriorDefaults       int     `json:"prior_defaults"`       // 0-5
}

// RiskFactor is a single weighted rule contribution to the linear score.
// Exposing factors individually lets credit officers understand why an
// applicant landed in a given tier.
type RiskFactor struct {
	Name         string  `json:"name"`         // machine-readable identifier
	RawRisk      float64 `json:"raw_risk"`     // component value in [0,1]
	Weight       float64 `json:"weight"`       // fixed weight from the score formula
	Contribution float64 `json:"contribution"` // weight x raw_risk
}

// RiskAssessment is the Scoring Engine output for one applicant.
type RiskAssessment struct {
	LinearRiskScore float64      `json:"linear_risk_score"` // clamped to [0,1]
	LatePaymentProb float64      `json:"late_payment_prob"` // PD in [0,1]
	RiskTier        string       `json:"risk_tier"`
	Decision        string       `json:"decision"`
	TopFactors      []RiskFactor `json:"top_factors"` // top 3 by contribution
	AllFactors      []RiskFactor `json:"all_factors"` // all 8, sorted descending
}

// ProductRecommendation is the Product Matcher output.
// It depends only on the applicant profile, not on the risk assessment.
type ProductRecommendation struct {
	RecommendedProduct string   `json:"recommended_product"`
	Top3Products       []string `json:"top_3_products"`
	MatchReason        string   `json:"match_reason"`
}

// BNPLTerms is the Policy Engine output: a risk-adjusted credit limit and a
// crop-cycle-aligned repayment tenor.
type BNPLTerms struct {
	Limit       int64       `json:"bnpl_limit"`        // currency units, 0 when declined
	TenorMonths int         `json:"bnpl_tenor_months"` // always >= 1
	Explanation TermsDetail `json:"explanation"`
}

// TermsDetail breaks the limit and tenor calculation down for transparency.
type TermsDetail struct {
	BaseLimit        int64    `json:"base_limit"`
	RiskMultiplier   float64  `json:"risk_multiplier"`
	IncomeMultiplier float64  `json:"income_multiplier"`
	TenureMultiplier float64  `json:"tenure_multiplier"`
	TenureFactors    []string `json:"tenure_factors"`
	BaseTenor        int      `json:"base_tenor_months"`
	TenorAdjustment  string   `json:"tenor_adjustment"`
	CropCycleImpact  string   `json:"crop_cycle_impact"`
}

// Decision is an applicant profile enriched with the full pipeline result.
// This is the canonical record persisted in the audit store.
type Decision struct {
	ID             string                `json:"id"`
	Applicant      ApplicantProfile      `json:"applicant"`
	Assessment     RiskAssessment        `json:"assessment"`
	Recommendation ProductRecommendation `json:"recommendation"`
	Terms          BNPLTerms             `json:"terms"`
	ProcessedAt    time.Time             `json:"processed_at"`
}

// ─── Product catalog ──────────────────────────────────────────────────────────

// ProductInfo is static catalog metadata for one BNPL product.
type ProductInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BaseLimit   int64    `json:"base_limit"`
	BaseTenor   int      `json:"base_tenor_months"`
	TargetCrops []string `json:"target_crops"`
}

// Catalog maps product identifiers to their metadata. These are constants of
// the credit policy; they are never mutated at runtime.
var Catalog = map[string]ProductInfo{
	ProductSeeds: {
		Name:        "Seeds BNPL",
		Description: "Seed financing for maize/rice farmers",
		BaseLimit:   20000,
		BaseTenor:   4,
		TargetCrops: []string{CropMaize, CropRice},
	},
	ProductFertilizer: {
		Name:        "Fertilizer BNPL",
		Description: "Input financing for high-intensity crops",
		BaseLimit:   35000,
		BaseTenor:   3,
		TargetCrops: []string{CropVegetables, CropHorticulture},
	},
	ProductEquipment: {
		Name:        "Equipment Lease",
		Description: "Machinery leasing for commercial farms",
		BaseLimit:   150000,
		BaseTenor:   12,
		TargetCrops: []string{"all"},
	},
	ProductInput: {
		Name:        "Input Bundle",
		Description: "Multi-input package for diversified farms",
		BaseLimit:   50000,
		BaseTenor:   6,
		TargetCrops: []string{CropMixed, CropLivestock},
	},
	ProductCash: {
		Name:        "Cash Advance",
		Description: "Short-term cash bridge for small needs",
		BaseLimit:   10000,
		BaseTenor:   2,
		TargetCrops: []string{"all"},
	},
	ProductPremium: {
		Name:        "Premium BNPL",
		Description: "General BNPL for established customers",
		BaseLimit:   75000,
		BaseTenor:   6,
		TargetCrops: []string{"all"},
	},
}

// ─── Webhooks ─────────────────────────────────────────────────────────────────

// WebhookConfig is a registered callback used to receive real-time alerts
// when an applicant's late-payment probability meets the threshold.
type WebhookConfig struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	PDThreshold float64   `json:"pd_threshold"` // fire when PD >= this value
	CreatedAt   time.Time `json:"created_at"`
	Active      bool      `json:"active"`
}

// WebhookPayload is the body sent to registered webhook URLs.
type WebhookPayload struct {
	Event       string    `json:"event"` // always "high_risk_application"
	TriggeredAt time.Time `json:"triggered_at"`
	Decision    Decision  `json:"decision"`
}

// ─── Reporting ────────────────────────────────────────────────────────────────

// PortfolioReport aggregates audited decisions for operations reporting and
// the dashboard.
type PortfolioReport struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	TotalDecisions  int                `json:"total_decisions"`
	TierCounts      map[string]int     `json:"tier_counts"`
	ProductCounts   map[string]int     `json:"product_counts"`
	MeanPD          float64            `json:"mean_pd"`
	MedianPD        float64            `json:"median_pd"`
	ApprovalRate    float64            `json:"approval_rate"`     // share with PD < 0.50
	AutoApproveRate float64            `json:"auto_approve_rate"` // share with PD < 0.15
	AvgPDByRegion   map[string]float64 `json:"avg_pd_by_region"`
	AvgPDByFarmType map[string]float64 `json:"avg_pd_by_farm_type"`
}
