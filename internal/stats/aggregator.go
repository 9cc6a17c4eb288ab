// Package stats reduces mapped recommendation records into summary metrics.
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cloudlens/advisor/internal/models"
)

// DefaultTopN is the number of records kept in the top-savings list when the
// caller does not override it.
const DefaultTopN = 10

// Aggregate computes SummaryMetrics over a finite record sequence in a
// single pass. It performs no I/O and does not mutate its input; running it
// twice over the same sequence yields identical results.
//
// Amounts are accumulated at full precision. Rounding is the report assembly
// boundary's job. Mixed-currency inputs are summed numerically without
// conversion; the pipeline assumes one currency per job.
func Aggregate(records []models.Recommendation, topN int) models.SummaryMetrics {
	if topN <= 0 {
		topN = DefaultTopN
	}

	metrics := models.SummaryMetrics{
		TotalRecommendations: len(records),
		CategoryDistribution: make(map[models.Category]int),
		ImpactDistribution:   make(map[models.Impact]int),
	}

	total := decimal.Zero
	withSavings := 0
	for _, rec := range records {
		metrics.CategoryDistribution[rec.Category]++
		metrics.ImpactDistribution[rec.Impact]++
		if rec.HasSavings() {
			total = total.Add(*rec.PotentialSavings)
			withSavings++
		}
	}

	metrics.TotalPotentialSavings = total
	metrics.SavingsRecordCount = withSavings
	if withSavings > 0 {
		metrics.AveragePotentialSavings = total.Div(decimal.NewFromInt(int64(withSavings)))
	} else {
		metrics.AveragePotentialSavings = decimal.Zero
	}

	metrics.TopRecommendations = topBySavings(records, topN)
	return metrics
}

// topBySavings returns at most n records ordered descending by savings.
// Records without savings sort below any amount, and ties keep ingestion
// order, which is why the sort must be stable over a copy.
func topBySavings(records []models.Recommendation, n int) []models.Recommendation {
	sorted := make([]models.Recommendation, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PotentialSavings, sorted[j].PotentialSavings
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.GreaterThan(*b)
		}
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
