package models

import "github.com/shopspring/decimal"

// SummaryMetrics is the aggregate output of one ingestion job. Computed once
// over the full set of mapped recommendations and immutable afterwards;
// callers needing fresh metrics re-run aggregation.
//
// Amounts keep full precision here. Rounding happens only at the report
// assembly boundary so per-category sums do not compound rounding error.
type SummaryMetrics struct {
	TotalRecommendations int `json:"total_recommendations"`

	// TotalPotentialSavings sums all non-nil savings amounts. Amounts in
	// different currencies are summed numerically without conversion; the
	// pipeline assumes a single currency per job.
	TotalPotentialSavings decimal.Decimal `json:"total_potential_savings"`

	// AveragePotentialSavings is TotalPotentialSavings divided by the number
	// of records carrying a savings amount; zero when none do.
	AveragePotentialSavings decimal.Decimal `json:"average_potential_savings"`

	// SavingsRecordCount is the number of records with a non-nil savings
	// amount (the divisor behind AveragePotentialSavings).
	SavingsRecordCount int `json:"savings_record_count"`

	CategoryDistribution map[Category]int `json:"category_distribution"`
	ImpactDistribution   map[Impact]int   `json:"impact_distribution"`

	// TopRecommendations holds at most N records ordered descending by
	// savings, ties broken by ingestion order.
	TopRecommendations []Recommendation `json:"top_recommendations"`

	// ProcessingErrors counts source rows that failed mapping, plus lines
	// the tokenizer could not align to the header.
	ProcessingErrors int `json:"processing_errors"`
}
