package store

import (
	"context"

	"fjacquet/finance-dashboard/internal/models"
)

// MockStore is a Memory store with injectable failures, for testing error paths.
type MockStore struct {
	*Memory

	// Error flags for testing error conditions
	ListTransactionsError   error
	QueryTransactionsError  error
	InsertTransactionsError error
	ListCategoriesError     error
	PingError               error

	InsertCalls int
}

// NewMockStore returns a MockStore over an empty Memory store.
func NewMockStore() *MockStore {
	return &MockStore{Memory: NewMemory()}
}

// Ping returns PingError when set.
func (m *MockStore) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return wrap("ping", m.PingError)
	}
	return m.Memory.Ping(ctx)
}

// ListTransactions returns ListTransactionsError when set.
func (m *MockStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	if m.ListTransactionsError != nil {
		return nil, wrap("list transactions", m.ListTransactionsError)
	}
	return m.Memory.ListTransactions(ctx)
}

// QueryTransactions returns QueryTransactionsError when set.
func (m *MockStore) QueryTransactions(ctx context.Context, q Query) ([]models.Transaction, error) {
	if m.QueryTransactionsError != nil {
		return nil, wrap("query transactions", m.QueryTransactionsError)
	}
	return m.Memory.QueryTransactions(ctx, q)
}

// InsertTransactions counts calls and returns InsertTransactionsError when set.
func (m *MockStore) InsertTransactions(ctx context.Context, txs []models.Transaction) (int, error) {
	m.InsertCalls++
	if m.InsertTransactionsError != nil {
		return 0, wrap("insert transactions", m.InsertTransactionsError)
	}
	return m.Memory.InsertTransactions(ctx, txs)
}

// ListCategories returns ListCategoriesError when set.
func (m *MockStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	if m.ListCategoriesError != nil {
		return nil, wrap("list categories", m.ListCategoriesError)
	}
	return m.Memory.ListCategories(ctx)
}
