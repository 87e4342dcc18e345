// Package store is the external table store of transactions and categories.
// Callers receive a Store through dependency injection; there is no global client.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/finance-dashboard/internal/dateutils"
	"fjacquet/finance-dashboard/internal/models"
)

// DefaultPageSize is the number of rows fetched per round trip by ListTransactions.
const DefaultPageSize = 1000

var (
	// ErrNotFound is returned when a row addressed by id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

// StoreError wraps every failure of a store call. Its message carries the
// underlying message verbatim.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrap returns nil for a nil err and a *StoreError otherwise.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// Query is the server-side part of a transaction filter. Zero fields are ignored.
type Query struct {
	From     time.Time
	To       time.Time
	Currency string
	Type     string
}

// Matches reports whether tx passes q. Date bounds compare calendar days of the
// parsed started date in any supported layout; an unparseable started date
// never passes a date bound.
func (q Query) Matches(tx models.Transaction) bool {
	if q.Currency != "" && !strings.EqualFold(q.Currency, tx.Currency) {
		return false
	}
	if q.Type != "" && !strings.EqualFold(q.Type, tx.Type) {
		return false
	}
	if q.From.IsZero() && q.To.IsZero() {
		return true
	}
	started, ok := tx.StartedTime()
	if !ok {
		return false
	}
	if !q.From.IsZero() && dateutils.CompareDates(started, q.From) < 0 {
		return false
	}
	if !q.To.IsZero() && dateutils.CompareDates(started, q.To) > 0 {
		return false
	}
	return true
}

// TransactionStore persists imported transactions.
type TransactionStore interface {
	// ListTransactions returns every stored transaction, fetched page by page.
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	// QueryTransactions returns the transactions for which q.Matches holds.
	QueryTransactions(ctx context.Context, q Query) ([]models.Transaction, error)
	// InsertTransactions stores all transactions or none and returns the count.
	InsertTransactions(ctx context.Context, txs []models.Transaction) (int, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// CategoryStore persists user-managed categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error)
	UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// Store is the complete store surface.
type Store interface {
	TransactionStore
	CategoryStore
	Ping(ctx context.Context) error
	Close()
}

// pageFunc fetches up to limit rows starting at offset.
type pageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// fetchAll drains fetch page by page until a short page is returned.
func fetchAll[T any](ctx context.Context, pageSize int, fetch pageFunc[T]) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var all []T
	for offset := 0; ; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
