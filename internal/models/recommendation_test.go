package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Category
		wantOK bool
	}{
		{name: "exact match", raw: "Cost", want: CategoryCost, wantOK: true},
		{name: "lowercase", raw: "security", want: CategorySecurity, wantOK: true},
		{name: "spaced pillar name", raw: "High Availability", want: CategoryHighAvailability, wantOK: true},
		{name: "renamed pillar", raw: "Reliability", want: CategoryHighAvailability, wantOK: true},
		{name: "operational excellence with space", raw: "Operational Excellence", want: CategoryOperationalExcellence, wantOK: true},
		{name: "surrounding whitespace", raw: "  Performance  ", want: CategoryPerformance, wantOK: true},
		{name: "unknown is rejected not bucketed", raw: "Networking", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeCategory(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalizeImpact(t *testing.T) {
	tests := []struct {
		raw    string
		want   Impact
		wantOK bool
	}{
		{raw: "High", want: ImpactHigh, wantOK: true},
		{raw: "medium", want: ImpactMedium, wantOK: true},
		{raw: "Moderate", want: ImpactMedium, wantOK: true},
		{raw: "LOW", want: ImpactLow, wantOK: true},
		{raw: "Critical", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeImpact(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRecommendationValidate(t *testing.T) {
	savings := decimal.NewFromFloat(1200.50)
	negative := decimal.NewFromInt(-10)

	valid := Recommendation{
		Category:           CategoryCost,
		Impact:             ImpactHigh,
		RecommendationText: "Right-size underutilized virtual machines",
		PotentialSavings:   &savings,
		Currency:           "USD",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		mutate func(*Recommendation)
		name   string
	}{
		{name: "invalid category", mutate: func(r *Recommendation) { r.Category = "Other" }},
		{name: "invalid impact", mutate: func(r *Recommendation) { r.Impact = "Severe" }},
		{name: "missing text", mutate: func(r *Recommendation) { r.RecommendationText = "" }},
		{name: "negative savings", mutate: func(r *Recommendation) { r.PotentialSavings = &negative }},
		{name: "bad currency", mutate: func(r *Recommendation) { r.Currency = "usd$" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestRecommendationHasSavings(t *testing.T) {
	r := Recommendation{Category: CategorySecurity, Impact: ImpactLow, RecommendationText: "Enable MFA"}
	assert.False(t, r.HasSavings())

	savings := decimal.Zero
	r.PotentialSavings = &savings
	assert.True(t, r.HasSavings())
}

func TestCategoriesCoverDistributionKeys(t *testing.T) {
	assert.Len(t, Categories(), 5)
	for _, c := range Categories() {
		assert.True(t, IsValidCategory(c))
	}
	assert.Len(t, Impacts(), 3)
	for _, i := range Impacts() {
		assert.True(t, IsValidImpact(i))
	}
}
