package models

import "strings"

// Impact is the business impact level Advisor assigns to a recommendation.
type Impact string

// Impact levels.
const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

// Impacts returns all valid impact levels in descending order.
func Impacts() []Impact {
	return []Impact{ImpactHigh, ImpactMedium, ImpactLow}
}

// NormalizeImpact maps raw impact strings to the canonical set.
func NormalizeImpact(raw string) (Impact, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return ImpactHigh, true
	case "medium", "moderate":
		return ImpactMedium, true
	case "low":
		return ImpactLow, true
	default:
		return "", false
	}
}

// IsValidImpact checks if an impact level is one of the canonical values.
func IsValidImpact(i Impact) bool {
	switch i {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return true
	default:
		return false
	}
}
