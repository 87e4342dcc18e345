package aggregate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/finance-dashboard/internal/currencyutils"
	"fjacquet/finance-dashboard/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s",
		dr.Start.Format("2006-01-02"),
		dr.End.Format("2006-01-02"))
}

// Extend widens the range to include t.
func (dr DateRange) Extend(t time.Time) DateRange {
	return dr.Merge(DateRange{Start: t, End: t})
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// Stats are the top-level figures of a transaction set.
type Stats struct {
	Count         int             `json:"count" yaml:"count"`
	TotalAmount   decimal.Decimal `json:"totalAmount" yaml:"total_amount"`
	AverageAmount decimal.Decimal `json:"averageAmount" yaml:"average_amount"`
	Range         DateRange       `json:"range" yaml:"range"`
}

// Statistics computes count, signed total and average. Empty input yields zeros.
func Statistics(txs []models.Transaction) Stats {
	ptrs := make([]*models.Transaction, len(txs))
	for i := range txs {
		ptrs[i] = &txs[i]
	}
	return StatisticsOf(ptrs)
}

// StatisticsOf is Statistics over a filtered pointer view.
func StatisticsOf(txs []*models.Transaction) Stats {
	var s Stats
	for _, tx := range txs {
		s.Count++
		s.TotalAmount = s.TotalAmount.Add(tx.Amount)
		if started, ok := tx.StartedTime(); ok {
			s.Range = s.Range.Extend(started)
		}
	}
	s.AverageAmount = currencyutils.Average(s.TotalAmount, s.Count)
	return s
}
