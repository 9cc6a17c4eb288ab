package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Recommendation is the normalized representation of one Advisor
// recommendation, decoupled from the source CSV's column naming.
// Records are never mutated after creation; corrections require
// re-ingesting the source file.
type Recommendation struct {
	// Index is the zero-based position of the source row within its file,
	// counted over successfully mapped records. Top-N tie-breaking depends
	// on it, so every stage must carry it forward unchanged.
	Index int `json:"index"`

	Category Category `json:"category"`
	Impact   Impact   `json:"impact"`

	ResourceName   string `json:"resource_name,omitempty"`
	ResourceGroup  string `json:"resource_group,omitempty"`
	SubscriptionID string `json:"subscription_id,omitempty"`

	RecommendationText string `json:"recommendation_text"`

	// PotentialSavings is the estimated annual savings. Nil for
	// non-cost recommendations.
	PotentialSavings *decimal.Decimal `json:"potential_savings,omitempty"`

	// Currency is the 3-letter code for PotentialSavings. Empty when
	// PotentialSavings is nil.
	Currency string `json:"currency,omitempty"`
}

// HasSavings reports whether the recommendation carries a savings estimate.
func (r *Recommendation) HasSavings() bool {
	return r.PotentialSavings != nil
}

// Validate checks the invariants every mapped record must satisfy.
func (r *Recommendation) Validate() error {
	if !IsValidCategory(r.Category) {
		return fmt.Errorf("recommendation has invalid category: %q", r.Category)
	}
	if !IsValidImpact(r.Impact) {
		return fmt.Errorf("recommendation has invalid impact: %q", r.Impact)
	}
	if r.RecommendationText == "" {
		return fmt.Errorf("recommendation missing required field: recommendation_text")
	}
	if r.PotentialSavings != nil {
		if r.PotentialSavings.IsNegative() {
			return fmt.Errorf("recommendation has negative potential savings: %s", r.PotentialSavings)
		}
		if len(r.Currency) != 3 {
			return fmt.Errorf("recommendation has invalid currency code: %q", r.Currency)
		}
	}
	return nil
}
