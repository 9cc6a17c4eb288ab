// Package models contains data structures for normalized Advisor recommendations.
package models

import "strings"

// Category classifies a recommendation by the Advisor pillar it belongs to.
type Category string

// Recommendation categories.
const (
	CategoryCost                  Category = "Cost"
	CategorySecurity              Category = "Security"
	CategoryHighAvailability      Category = "HighAvailability"
	CategoryPerformance           Category = "Performance"
	CategoryOperationalExcellence Category = "OperationalExcellence"
)

// Categories returns all valid categories in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryCost,
		CategorySecurity,
		CategoryHighAvailability,
		CategoryPerformance,
		CategoryOperationalExcellence,
	}
}

// NormalizeCategory maps Azure's raw category strings to the canonical set.
// Unknown values are rejected rather than bucketed, so a bad export cannot
// skew the category distribution.
func NormalizeCategory(raw string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cost":
		return CategoryCost, true
	case "security":
		return CategorySecurity, true
	case "high availability", "highavailability", "reliability":
		// Azure renamed the High Availability pillar to Reliability; both
		// spellings appear in exports depending on vintage.
		return CategoryHighAvailability, true
	case "performance":
		return CategoryPerformance, true
	case "operational excellence", "operationalexcellence":
		return CategoryOperationalExcellence, true
	default:
		return "", false
	}
}

// IsValidCategory checks if a category is one of the canonical values.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryCost, CategorySecurity, CategoryHighAvailability, CategoryPerformance, CategoryOperationalExcellence:
		return true
	default:
		return false
	}
}
