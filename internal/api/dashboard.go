package api

import (
	"html/template"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"agriflow/bnpl-api/internal/domain"
)

// Dashboard renders a server-side HTML snapshot of the portfolio: tier and
// product distributions as inline SVG bars plus the most recent decisions.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	report, err := h.decisions.Report()
	if err != nil {
		h.log.Error("dashboard report failed", zap.Error(err))
		internalError(w)
		return
	}

	recent, err := h.decisions.ListRecent(20)
	if err != nil {
		h.log.Error("dashboard recent failed", zap.Error(err))
		internalError(w)
		return
	}

	view := dashboardView{
		Report:     report,
		TierBars:   barsFromCounts(report.TierCounts, tierOrder),
		ProductBar: barsFromCounts(report.ProductCounts, nil),
		Recent:     recent,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, view); err != nil {
		h.log.Error("dashboard render failed", zap.Error(err))
	}
}

type dashboardView struct {
	Report     *domain.PortfolioReport
	TierBars   []bar
	ProductBar []bar
	Recent     []domain.Decision
}

type bar struct {
	Label string
	Count int
	Width int // pixels, scaled to the largest bar
}

var tierOrder = []string{domain.TierLow, domain.TierMedium, domain.TierHigh, domain.TierDecline}

const maxBarWidth = 360

// barsFromCounts scales counts into fixed-width SVG bars. When order is nil
// the labels are sorted by count descending.
func barsFromCounts(counts map[string]int, order []string) []bar {
	if order == nil {
		for label := range counts {
			order = append(order, label)
		}
		sort.Slice(order, func(i, j int) bool {
			if counts[order[i]] != counts[order[j]] {
				return counts[order[i]] > counts[order[j]]
			}
			return order[i] < order[j]
		})
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	bars := make([]bar, 0, len(order))
	for _, label := range order {
		count := counts[label]
		width := 0
		if max > 0 {
			width = count * maxBarWidth / max
		}
		bars = append(bars, bar{Label: label, Count: count, Width: width})
	}
	return bars
}

var dashboardFuncs = template.FuncMap{
	"mulPct":     func(v float64) float64 { return v * 100 },
	"svgHeight":  func(bars []bar) int { return len(bars)*24 + 8 },
	"rowY":       func(i int) int { return i*24 + 18 },
	"barY":       func(i int) int { return i*24 + 6 },
	"labelX":     func(width int) int { return 96 + width },
	"labelXWide": func(width int) int { return 136 + width },
}

var dashboardTmpl = template.Must(template.New("dashboard").Funcs(dashboardFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Agriflow BNPL Portfolio</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem; color: #1a2b1a; }
  h1 { font-size: 1.4rem; }
  h2 { font-size: 1.1rem; margin-top: 2rem; }
  .stats { display: flex; gap: 2rem; flex-wrap: wrap; }
  .stat { background: #f2f7f2; padding: 0.8rem 1.2rem; border-radius: 6px; }
  .stat b { display: block; font-size: 1.3rem; }
  table { border-collapse: collapse; margin-top: 0.5rem; }
  th, td { text-align: left; padding: 0.3rem 0.8rem; border-bottom: 1px solid #dde5dd; font-size: 0.85rem; }
  svg text { font-size: 12px; }
</style>
</head>
<body>
<h1>Agriflow BNPL Portfolio</h1>

<div class="stats">
  <div class="stat"><b>{{.Report.TotalDecisions}}</b> decisions</div>
  <div class="stat"><b>{{printf "%.3f" .Report.MeanPD}}</b> mean PD</div>
  <div class="stat"><b>{{printf "%.3f" .Report.MedianPD}}</b> median PD</div>
  <div class="stat"><b>{{printf "%.1f%%" (mulPct .Report.ApprovalRate)}}</b> approval rate</div>
  <div class="stat"><b>{{printf "%.1f%%" (mulPct .Report.AutoApproveRate)}}</b> auto-approve rate</div>
</div>

<h2>Risk Tier Distribution</h2>
<svg width="520" height="{{svgHeight .TierBars}}">
{{range $i, $b := .TierBars}}
  <text x="0" y="{{rowY $i}}">{{$b.Label}}</text>
  <rect x="90" y="{{barY $i}}" width="{{$b.Width}}" height="16" fill="#4a7c4a"></rect>
  <text x="{{labelX $b.Width}}" y="{{rowY $i}}">{{$b.Count}}</text>
{{end}}
</svg>

<h2>Product Distribution</h2>
<svg width="560" height="{{svgHeight .ProductBar}}">
{{range $i, $b := .ProductBar}}
  <text x="0" y="{{rowY $i}}">{{$b.Label}}</text>
  <rect x="130" y="{{barY $i}}" width="{{$b.Width}}" height="16" fill="#6b8e23"></rect>
  <text x="{{labelXWide $b.Width}}" y="{{rowY $i}}">{{$b.Count}}</text>
{{end}}
</svg>

<h2>Average PD by Region</h2>
<table>
<tr><th>Region</th><th>Avg PD</th></tr>
{{range $region, $pd := .Report.AvgPDByRegion}}
<tr><td>{{$region}}</td><td>{{printf "%.3f" $pd}}</td></tr>
{{end}}
</table>

<h2>Average PD by Farm Type</h2>
<table>
<tr><th>Farm Type</th><th>Avg PD</th></tr>
{{range $farmType, $pd := .Report.AvgPDByFarmType}}
<tr><td>{{$farmType}}</td><td>{{printf "%.3f" $pd}}</td></tr>
{{end}}
</table>

<h2>Recent Decisions</h2>
<table>
<tr><th>User</th><th>Region</th><th>Farm</th><th>Crop</th><th>PD</th><th>Tier</th><th>Product</th><th>Limit</th><th>Tenor</th></tr>
{{range .Recent}}
<tr>
  <td>{{.Applicant.UserID}}</td>
  <td>{{.Applicant.Region}}</td>
  <td>{{.Applicant.FarmType}}</td>
  <td>{{.Applicant.CropType}}</td>
  <td>{{printf "%.3f" .Assessment.LatePaymentProb}}</td>
  <td>{{.Assessment.RiskTier}}</td>
  <td>{{.Recommendation.RecommendedProduct}}</td>
  <td>{{.Terms.Limit}}</td>
  <td>{{.Terms.TenorMonths}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))
