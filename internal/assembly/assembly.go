// Package assembly builds the fixed-shape structure consumed by the report
// rendering layer. Every field is always populated, so renderers never
// special-case missing data, and all amounts are rounded here and only here.
package assembly

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cloudlens/advisor/internal/models"
)

// displayScale is the number of decimal places exposed to renderers.
const displayScale = 2

// monthsPerYear converts annual savings estimates to monthly ones.
var monthsPerYear = decimal.NewFromInt(12)

// Recommendation is the renderer-facing view of one record.
type Recommendation struct {
	Category           string `json:"category"`
	Impact             string `json:"impact"`
	RecommendationText string `json:"recommendation_text"`
	ResourceName       string `json:"resource_name"`
	ResourceGroup      string `json:"resource_group"`
	SubscriptionID     string `json:"subscription_id"`
	// PotentialSavings is the rounded annual amount, "0.00" when the record
	// carries no estimate.
	PotentialSavings decimal.Decimal `json:"potential_savings"`
	Currency         string          `json:"currency"`
	HasSavings       bool            `json:"has_savings"`
}

// ReportData is the contract between aggregation and rendering.
//
// AverageSavingsPerRecommendation is a legacy alias for
// AveragePotentialSavings kept for one deprecation cycle: both keys carry
// identical values, and consumers should migrate to the canonical name.
type ReportData struct {
	ClientName  string    `json:"client_name"`
	Environment string    `json:"environment"`
	JobID       string    `json:"job_id"`
	SourceFile  string    `json:"source_file"`
	GeneratedAt time.Time `json:"generated_at"`

	TotalRecommendations int `json:"total_recommendations"`

	TotalPotentialSavings   decimal.Decimal `json:"total_potential_savings"`
	AveragePotentialSavings decimal.Decimal `json:"average_potential_savings"`
	// Deprecated: use AveragePotentialSavings. Identical value.
	AverageSavingsPerRecommendation decimal.Decimal `json:"average_savings_per_recommendation"`
	EstimatedMonthlySavings         decimal.Decimal `json:"estimated_monthly_savings"`
	Currency                        string          `json:"currency"`

	CategoryDistribution map[string]int `json:"category_distribution"`
	ImpactDistribution   map[string]int `json:"impact_distribution"`

	TopRecommendations []Recommendation `json:"top_recommendations"`

	ProcessingErrors int `json:"processing_errors"`
}

// Options carries job context surfaced alongside the metrics.
type Options struct {
	ClientName  string
	Environment string
	JobID       string
	SourceFile  string
	Currency    string
	GeneratedAt time.Time
}

// Assemble merges metrics with explicit defaults into the renderer contract.
// Distributions carry a key for every canonical category and impact, zero
// when absent, so templates can iterate without nil checks.
func Assemble(metrics models.SummaryMetrics, opts Options) ReportData {
	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	average := metrics.AveragePotentialSavings.Round(displayScale)

	data := ReportData{
		ClientName:  opts.ClientName,
		Environment: opts.Environment,
		JobID:       opts.JobID,
		SourceFile:  opts.SourceFile,
		GeneratedAt: generatedAt,

		TotalRecommendations: metrics.TotalRecommendations,

		TotalPotentialSavings:           metrics.TotalPotentialSavings.Round(displayScale),
		AveragePotentialSavings:         average,
		AverageSavingsPerRecommendation: average,
		EstimatedMonthlySavings:         metrics.TotalPotentialSavings.Div(monthsPerYear).Round(displayScale),
		Currency:                        opts.Currency,

		CategoryDistribution: make(map[string]int, len(models.Categories())),
		ImpactDistribution:   make(map[string]int, len(models.Impacts())),

		TopRecommendations: make([]Recommendation, 0, len(metrics.TopRecommendations)),

		ProcessingErrors: metrics.ProcessingErrors,
	}

	for _, c := range models.Categories() {
		data.CategoryDistribution[string(c)] = metrics.CategoryDistribution[c]
	}
	for _, i := range models.Impacts() {
		data.ImpactDistribution[string(i)] = metrics.ImpactDistribution[i]
	}

	for _, rec := range metrics.TopRecommendations {
		view := Recommendation{
			Category:           string(rec.Category),
			Impact:             string(rec.Impact),
			RecommendationText: rec.RecommendationText,
			ResourceName:       rec.ResourceName,
			ResourceGroup:      rec.ResourceGroup,
			SubscriptionID:     rec.SubscriptionID,
			Currency:           rec.Currency,
		}
		if rec.HasSavings() {
			view.HasSavings = true
			view.PotentialSavings = rec.PotentialSavings.Round(displayScale)
		} else {
			view.PotentialSavings = decimal.Zero.Round(displayScale)
			view.Currency = opts.Currency
		}
		data.TopRecommendations = append(data.TopRecommendations, view)
	}

	return data
}
