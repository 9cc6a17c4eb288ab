// Package mapper normalizes raw Advisor CSV rows into canonical
// recommendation records.
package mapper

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cloudlens/advisor/internal/ingest"
	"github.com/cloudlens/advisor/internal/models"
)

// Canonical field names used in alias tables and error reporting.
const (
	FieldCategory       = "category"
	FieldImpact         = "impact"
	FieldRecommendation = "recommendation"
	FieldResourceName   = "resource_name"
	FieldResourceGroup  = "resource_group"
	FieldSubscriptionID = "subscription_id"
	FieldSavings        = "potential_savings"
	FieldCurrency       = "currency"
)

// defaultAliases maps canonical fields to the header spellings seen across
// Advisor export vintages. Matching is case-insensitive.
var defaultAliases = map[string][]string{
	FieldCategory:       {"category"},
	FieldImpact:         {"impact", "business impact"},
	FieldRecommendation: {"recommendation", "recommendation text", "short description", "description"},
	FieldResourceName:   {"resource name", "impacted resource", "resource", "impacted value"},
	FieldResourceGroup:  {"resource group", "resourcegroup"},
	FieldSubscriptionID: {"subscription id", "subscription", "subscription guid"},
	FieldSavings: {
		"potential annual cost savings",
		"potential annual savings",
		"annual savings",
		"potential savings",
		"savings amount",
	},
	FieldCurrency: {
		"potential annual cost savings currency",
		"savings currency",
		"currency",
	},
}

// MappingError is a row-level, recoverable failure: the offending row is
// counted and skipped, the batch continues.
type MappingError struct {
	Field  string
	Value  string
	Reason string
	Line   int
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	return fmt.Sprintf("line %d: field %s: %s (value %q)", e.Line, e.Field, e.Reason, e.Value)
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithDefaultCurrency sets the currency assumed when a row carries a savings
// amount but no currency column or value.
func WithDefaultCurrency(code string) Option {
	return func(m *Mapper) {
		m.defaultCurrency = strings.ToUpper(code)
	}
}

// WithExtraAliases appends additional header aliases per canonical field,
// typically sourced from configuration.
func WithExtraAliases(aliases map[string][]string) Option {
	return func(m *Mapper) {
		m.extraAliases = aliases
	}
}

// Mapper converts RawRows to Recommendations. It is bound to one header at
// construction; Map itself is pure and safe for reuse across rows.
type Mapper struct {
	indexes         map[string]int
	extraAliases    map[string][]string
	defaultCurrency string
	mapped          int
}

// NewMapper resolves the alias table against a header. Headers missing the
// required columns are accepted: each row then fails individually with a
// MappingError so the job surfaces the damage through processing_errors
// instead of aborting.
func NewMapper(header []string, opts ...Option) *Mapper {
	m := &Mapper{
		defaultCurrency: "USD",
	}
	for _, opt := range opts {
		opt(m)
	}

	m.indexes = resolveHeader(header, m.extraAliases)
	return m
}

// resolveHeader matches each canonical field to a column index,
// case-insensitively, first alias wins.
func resolveHeader(header []string, extra map[string][]string) map[string]int {
	lowered := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := lowered[key]; !seen {
			lowered[key] = i
		}
	}

	indexes := make(map[string]int)
	for field, aliases := range defaultAliases {
		candidates := append(append([]string{}, aliases...), extra[field]...)
		for _, alias := range candidates {
			if idx, ok := lowered[strings.ToLower(alias)]; ok {
				indexes[field] = idx
				break
			}
		}
	}
	return indexes
}

// HasColumn reports whether the bound header resolved the given canonical field.
func (m *Mapper) HasColumn(field string) bool {
	_, ok := m.indexes[field]
	return ok
}

// Map normalizes one raw row. On failure it returns a *MappingError tagged
// with the offending field and raw value; the record is rejected, never
// silently defaulted.
func (m *Mapper) Map(row ingest.RawRow) (models.Recommendation, *MappingError) {
	rawCategory := m.cell(row, FieldCategory)
	category, ok := models.NormalizeCategory(rawCategory)
	if !ok {
		return models.Recommendation{}, &MappingError{
			Line:   row.Line,
			Field:  FieldCategory,
			Value:  rawCategory,
			Reason: "unrecognized category",
		}
	}

	rawImpact := m.cell(row, FieldImpact)
	impact, ok := models.NormalizeImpact(rawImpact)
	if !ok {
		return models.Recommendation{}, &MappingError{
			Line:   row.Line,
			Field:  FieldImpact,
			Value:  rawImpact,
			Reason: "unrecognized impact",
		}
	}

	text := m.cell(row, FieldRecommendation)
	if text == "" {
		return models.Recommendation{}, &MappingError{
			Line:   row.Line,
			Field:  FieldRecommendation,
			Reason: "missing recommendation text",
		}
	}

	rec := models.Recommendation{
		Index:              m.mapped,
		Category:           category,
		Impact:             impact,
		RecommendationText: text,
		ResourceName:       m.cell(row, FieldResourceName),
		ResourceGroup:      m.cell(row, FieldResourceGroup),
		SubscriptionID:     m.cell(row, FieldSubscriptionID),
	}

	if rawSavings := m.cell(row, FieldSavings); rawSavings != "" {
		savings, err := parseSavings(rawSavings)
		if err != nil {
			return models.Recommendation{}, &MappingError{
				Line:   row.Line,
				Field:  FieldSavings,
				Value:  rawSavings,
				Reason: err.Error(),
			}
		}
		if savings.IsNegative() {
			return models.Recommendation{}, &MappingError{
				Line:   row.Line,
				Field:  FieldSavings,
				Value:  rawSavings,
				Reason: "savings amount is negative",
			}
		}

		rec.PotentialSavings = &savings
		rec.Currency = strings.ToUpper(m.cell(row, FieldCurrency))
		if rec.Currency == "" {
			rec.Currency = m.defaultCurrency
		}
		if len(rec.Currency) != 3 {
			return models.Recommendation{}, &MappingError{
				Line:   row.Line,
				Field:  FieldCurrency,
				Value:  rec.Currency,
				Reason: "currency is not a 3-letter code",
			}
		}
	}

	m.mapped++
	return rec, nil
}

// cell returns the trimmed value for a canonical field, or "" when the
// header has no matching column.
func (m *Mapper) cell(row ingest.RawRow, field string) string {
	idx, ok := m.indexes[field]
	if !ok || idx >= len(row.Fields) {
		return ""
	}
	return strings.TrimSpace(row.Fields[idx])
}

// parseSavings coerces an export's savings cell into a decimal. Exports
// vary between plain numbers ("1234.56") and formatted amounts ("1,234.56").
func parseSavings(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("savings amount is not numeric")
	}
	return d, nil
}
