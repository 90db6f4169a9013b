// Package product implements deterministic product matching.
//
// The eligibility rules form an ordered priority list evaluated top-down;
// the first matching product is the primary recommendation. The order is a
// correctness requirement of the credit policy, not a stylistic choice: the
// synthetic data generator labels profiles with the same order, so changing
// it silently degrades the matcher's agreement rate.
package product

import (
	"fmt"
	"sort"

	"agriflow/bnpl-api/internal/domain"
)

// rule pairs a product with its eligibility predicate and a base
// compatibility score used to rank alternatives in the top-3 list.
type rule struct {
	product   string
	baseScore int
	matches   func(*domain.ApplicantProfile) bool
}

// rules is the priority list. First match wins for the primary
// recommendation; Premium_BNPL is the unconditional fallback.
var rules = []rule{
	{domain.ProductEquipment, 90, func(p *domain.ApplicantProfile) bool {
		return p.FarmType == domain.FarmCommercial && p.AvgOrderValue > 80000
	}},
	{domain.ProductCash, 80, func(p *domain.ApplicantProfile) bool {
		return p.AvgOrderValue < 15000 && p.DeviceTrustScore > 70
	}},
	{domain.ProductSeeds, 100, func(p *domain.ApplicantProfile) bool {
		return (p.CropType == domain.CropMaize || p.CropType == domain.CropRice) && p.AvgOrderValue < 30000
	}},
	{domain.ProductFertilizer, 95, func(p *domain.ApplicantProfile) bool {
		return (p.CropType == domain.CropVegetables || p.CropType == domain.CropHorticulture) && p.AvgOrderValue < 50000
	}},
	{domain.ProductInput, 85, func(p *domain.ApplicantProfile) bool {
		return (p.CropType == domain.CropMixed || p.FarmType == domain.FarmCooperative) && p.DeviceTrustScore > 60
	}},
	{domain.ProductPremium, 50, func(p *domain.ApplicantProfile) bool {
		return true
	}},
}

// Match evaluates the priority list and returns the primary recommendation
// plus a ranked top-3 list. The primary is always rank 1; remaining matched
// products are ordered by boosted compatibility score, ties keeping priority
// order.
func Match(p *domain.ApplicantProfile) domain.ProductRecommendation {
	type candidate struct {
		product  string
		score    int
		priority int
	}

	var primary string
	var alternatives []candidate

	for i, r := range rules {
		if !r.matches(p) {
			continue
		}
		if primary == "" {
			primary = r.product
			continue
		}
		alternatives = append(alternatives, candidate{
			product:  r.product,
			score:    r.baseScore + boost(r.product, p),
			priority: i,
		})
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		if alternatives[i].score != alternatives[j].score {
			return alternatives[i].score > alternatives[j].score
		}
		return alternatives[i].priority < alternatives[j].priority
	})

	top3 := []string{primary}
	for _, c := range alternatives {
		if len(top3) == 3 {
			break
		}
		top3 = append(top3, c.product)
	}

	return domain.ProductRecommendation{
		RecommendedProduct: primary,
		Top3Products:       top3,
		MatchReason:        matchReason(primary, p),
	}
}

// boost applies the secondary compatibility adjustments used to rank
// alternatives: larger operations fit equipment and bundles better,
// smallholders fit input financing, high device trust favours everything
// digital.
func boost(product string, p *domain.ApplicantProfile) int {
	b := 0
	if product == domain.ProductEquipment && p.FarmSizeHa > 50 {
		b += 5
	}
	if (product == domain.ProductSeeds || product == domain.ProductFertilizer) && p.FarmType == domain.FarmSmallholder {
		b += 3
	}
	if product == domain.ProductInput && p.FarmSizeHa > 10 {
		b += 4
	}
	if p.DeviceTrustScore > 80 {
		b += 2
	}
	return b
}

func matchReason(product string, p *domain.ApplicantProfile) string {
	info := domain.Catalog[product]
	return fmt.Sprintf("%s - %s crop", info.Description, p.CropType)
}
