package assembly

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlens/advisor/internal/models"
	"github.com/cloudlens/advisor/internal/stats"
)

func sampleMetrics(t *testing.T) models.SummaryMetrics {
	t.Helper()
	savings := decimal.RequireFromString("1200.555")
	records := []models.Recommendation{
		{
			Index:              0,
			Category:           models.CategoryCost,
			Impact:             models.ImpactHigh,
			RecommendationText: "Right-size VMs",
			PotentialSavings:   &savings,
			Currency:           "USD",
		},
		{
			Index:              1,
			Category:           models.CategorySecurity,
			Impact:             models.ImpactMedium,
			RecommendationText: "Enable MFA",
		},
	}
	metrics := stats.Aggregate(records, 10)
	metrics.ProcessingErrors = 3
	return metrics
}

func TestAssembleDualKeyContract(t *testing.T) {
	data := Assemble(sampleMetrics(t), Options{ClientName: "acme", Currency: "USD"})

	assert.True(t, data.AveragePotentialSavings.Equal(data.AverageSavingsPerRecommendation),
		"legacy alias must carry the identical value")
	assert.True(t, data.AveragePotentialSavings.Equal(decimal.RequireFromString("1200.56")))
}

func TestAssembleJSONKeys(t *testing.T) {
	data := Assemble(sampleMetrics(t), Options{ClientName: "acme", Currency: "USD"})

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	for _, key := range []string{
		"total_recommendations",
		"total_potential_savings",
		"average_potential_savings",
		"average_savings_per_recommendation",
		"estimated_monthly_savings",
		"category_distribution",
		"impact_distribution",
		"top_recommendations",
		"processing_errors",
	} {
		assert.Contains(t, decoded, key)
	}

	assert.Equal(t, decoded["average_potential_savings"], decoded["average_savings_per_recommendation"])
}

func TestAssembleRounding(t *testing.T) {
	data := Assemble(sampleMetrics(t), Options{Currency: "USD"})

	assert.Equal(t, "1200.56", data.TotalPotentialSavings.String())
	// 1200.555 / 12 = 100.046... rounded at the boundary, not before.
	assert.Equal(t, "100.05", data.EstimatedMonthlySavings.String())
}

func TestAssembleDistributionDefaults(t *testing.T) {
	data := Assemble(sampleMetrics(t), Options{})

	require.Len(t, data.CategoryDistribution, 5, "every category key present")
	require.Len(t, data.ImpactDistribution, 3, "every impact key present")
	assert.Equal(t, 1, data.CategoryDistribution["Cost"])
	assert.Equal(t, 0, data.CategoryDistribution["Performance"])
	assert.Equal(t, 0, data.ImpactDistribution["Low"])
}

func TestAssembleEmptyMetrics(t *testing.T) {
	data := Assemble(stats.Aggregate(nil, 10), Options{Currency: "USD"})

	assert.Zero(t, data.TotalRecommendations)
	assert.Equal(t, "0.00", data.TotalPotentialSavings.StringFixed(2))
	assert.Equal(t, "0.00", data.AveragePotentialSavings.StringFixed(2))
	assert.Equal(t, "0.00", data.EstimatedMonthlySavings.StringFixed(2))
	assert.NotNil(t, data.TopRecommendations)
	assert.Empty(t, data.TopRecommendations)
	assert.Len(t, data.CategoryDistribution, 5)
	assert.Zero(t, data.ProcessingErrors)
}

func TestAssembleSurfacesProcessingErrors(t *testing.T) {
	data := Assemble(sampleMetrics(t), Options{})
	assert.Equal(t, 3, data.ProcessingErrors)
}

func TestAssembleTopRecommendationDefaults(t *testing.T) {
	data := Assemble(sampleMetrics(t), Options{Currency: "USD"})

	require.Len(t, data.TopRecommendations, 2)
	top := data.TopRecommendations[0]
	assert.True(t, top.HasSavings)
	assert.Equal(t, "1200.56", top.PotentialSavings.String())

	second := data.TopRecommendations[1]
	assert.False(t, second.HasSavings)
	assert.True(t, second.PotentialSavings.IsZero())
	assert.Equal(t, "USD", second.Currency, "no-savings records fall back to the job currency")
}

func TestAssembleGeneratedAt(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	data := Assemble(sampleMetrics(t), Options{GeneratedAt: ts})
	assert.Equal(t, ts, data.GeneratedAt)

	data = Assemble(sampleMetrics(t), Options{})
	assert.WithinDuration(t, time.Now(), data.GeneratedAt, time.Minute)
}
