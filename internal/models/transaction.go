// Package models provides the data structures used throughout the application.
package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/finance-dashboard/internal/dateutils"
)

// Transaction is the typed form of a sanitized record as stored and served.
type Transaction struct {
	ID            string          `json:"id" yaml:"id"`
	StartedDate   string          `json:"startedDate" yaml:"started_date"`
	CompletedDate *string         `json:"completedDate" yaml:"completed_date,omitempty"`
	Description   string          `json:"description" yaml:"description"`
	Amount        decimal.Decimal `json:"amount" yaml:"amount"`
	Fee           decimal.Decimal `json:"fee" yaml:"fee"`
	Balance       decimal.Decimal `json:"balance" yaml:"balance"`
	Currency      string          `json:"currency" yaml:"currency"`
	Type          string          `json:"type" yaml:"type"`
	Product       string          `json:"product" yaml:"product"`
	State         string          `json:"state" yaml:"state"`
	CreatedAt     time.Time       `json:"createdAt" yaml:"created_at"`

	// Line is the source line of an imported row; never persisted.
	Line int `json:"-" yaml:"-"`
}

// TransactionFromRecord builds a transaction from a sanitized record.
// Numeric cells that do not parse become zero.
func TransactionFromRecord(r Record) Transaction {
	tx := Transaction{
		StartedDate: r[FieldStartedDate],
		Description: r[FieldDescription],
		Amount:      decimalOrZero(r[FieldAmount]),
		Fee:         decimalOrZero(r[FieldFee]),
		Balance:     decimalOrZero(r[FieldBalance]),
		Currency:    r[FieldCurrency],
		Type:        r[FieldType],
		Product:     r[FieldProduct],
		State:       r[FieldState],
		Line:        r.Line(),
	}
	if completed, ok := r[FieldCompletedDate]; ok && completed != "" {
		tx.CompletedDate = &completed
	}
	return tx
}

// TransactionsFromRecords converts a batch of sanitized records.
func TransactionsFromRecords(records []Record) []Transaction {
	txs := make([]Transaction, 0, len(records))
	for _, r := range records {
		txs = append(txs, TransactionFromRecord(r))
	}
	return txs
}

// Record returns the canonical record of the transaction, transient line included
// when known.
func (t Transaction) Record() Record {
	r := Record{
		FieldStartedDate: t.StartedDate,
		FieldDescription: t.Description,
		FieldAmount:      t.Amount.String(),
		FieldFee:         t.Fee.String(),
		FieldBalance:     t.Balance.String(),
		FieldCurrency:    t.Currency,
		FieldType:        t.Type,
		FieldProduct:     t.Product,
		FieldState:       t.State,
	}
	if t.CompletedDate != nil {
		r[FieldCompletedDate] = *t.CompletedDate
	}
	if t.Line > 0 {
		r[FieldLine] = strconv.Itoa(t.Line)
	}
	return r
}

// AbsAmount returns |Amount|.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// StartedTime parses the started date. ok is false when it cannot be parsed.
func (t Transaction) StartedTime() (time.Time, bool) {
	if t.StartedDate == "" {
		return time.Time{}, false
	}
	parsed, _, err := dateutils.ParseDate(t.StartedDate)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// CompletedDateString returns the completed date or "" when absent.
func (t Transaction) CompletedDateString() string {
	if t.CompletedDate == nil {
		return ""
	}
	return *t.CompletedDate
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
