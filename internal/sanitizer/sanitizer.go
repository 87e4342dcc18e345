// Package sanitizer normalizes parsed records into the canonical field set and
// drops rows that cannot become transactions.
package sanitizer

import (
	"strings"

	"fjacquet/finance-dashboard/internal/currencyutils"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
)

// FieldAliases maps a canonical field to alternative header names, in priority order.
// The canonical name itself is always tried first.
type FieldAliases map[string][]string

// DefaultAliases covers the header variants seen in common bank exports.
func DefaultAliases() FieldAliases {
	return FieldAliases{
		models.FieldStartedDate:   {"Start Date", "Date", "Booking Date"},
		models.FieldCompletedDate: {"Completion Date", "Value Date"},
		models.FieldDescription:   {"Merchant", "Payee", "Details"},
		models.FieldAmount:        {"Value"},
		models.FieldFee:           {"Fees"},
		models.FieldBalance:       {"Running Balance"},
		models.FieldCurrency:      {"Ccy"},
		models.FieldType:          {"Transaction Type"},
		models.FieldProduct:       {"Category", "Account"},
		models.FieldState:         {"Status"},
	}
}

// Sanitizer is safe for concurrent use; it holds no mutable state.
type Sanitizer struct {
	aliases FieldAliases
	logger  logging.Logger
}

// New creates a Sanitizer. A nil alias table means DefaultAliases.
func New(aliases FieldAliases, logger logging.Logger) *Sanitizer {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Sanitizer{aliases: aliases, logger: logger}
}

// Sanitize normalizes every record and keeps the complete ones, in input order.
func (s *Sanitizer) Sanitize(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		clean := s.SanitizeRecord(r)
		if !s.IsComplete(clean) {
			s.logger.Debug("Dropping incomplete record", logging.F(logging.FieldLine, r.Line()))
			continue
		}
		out = append(out, clean)
	}
	if dropped := len(records) - len(out); dropped > 0 {
		s.logger.Info("Dropped incomplete records",
			logging.F(logging.FieldCount, dropped),
			logging.F(logging.FieldExpected, strings.Join(models.RequiredFields, ", ")))
	}
	return out
}

// SanitizeRecord returns the canonical form of one record. Transient markers
// are carried over; columns outside the canonical set are not.
func (s *Sanitizer) SanitizeRecord(r models.Record) models.Record {
	out := make(models.Record, len(models.CanonicalFields)+1)

	for _, field := range models.NumericFields {
		value, _ := s.lookup(r, field)
		out[field] = currencyutils.Canonical(value)
	}
	for _, field := range models.TextFields {
		value, _ := s.lookup(r, field)
		out[field] = strings.TrimSpace(value)
	}
	for _, field := range models.DateFields {
		if value, ok := s.lookup(r, field); ok && strings.TrimSpace(value) != "" {
			out[field] = value
		}
	}

	for k, v := range r {
		if models.IsTransient(k) {
			out[k] = v
		}
	}
	return out
}

// IsComplete reports whether the record has Type, Product and Started Date.
func (s *Sanitizer) IsComplete(r models.Record) bool {
	for _, field := range models.RequiredFields {
		if strings.TrimSpace(r[field]) == "" {
			return false
		}
	}
	return true
}

// lookup resolves a canonical field: the canonical name first, then the aliases.
func (s *Sanitizer) lookup(r models.Record, field string) (string, bool) {
	if v, ok := r[field]; ok {
		return v, true
	}
	for _, alias := range s.aliases[field] {
		if v, ok := r[alias]; ok {
			return v, true
		}
	}
	return "", false
}
