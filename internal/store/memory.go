package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fjacquet/finance-dashboard/internal/models"
)

// Memory is an in-process Store used for tests and the memory driver.
type Memory struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	categories   []models.Category
	pageSize     int
	pagesFetched int
	now          func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithPageSize sets the page size used by ListTransactions.
func WithPageSize(n int) MemoryOption {
	return func(m *Memory) { m.pageSize = n }
}

// WithClock replaces time.Now for created/updated timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{pageSize: DefaultPageSize, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() {}

// PagesFetched reports how many pages ListTransactions has read so far.
func (m *Memory) PagesFetched() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pagesFetched
}

// ListTransactions returns all transactions in insertion order.
func (m *Memory) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	txs, err := fetchAll(ctx, m.pageSize, m.transactionPage)
	return txs, wrap("list transactions", err)
}

func (m *Memory) transactionPage(_ context.Context, offset, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pagesFetched++

	if offset >= len(m.transactions) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.transactions) {
		end = len(m.transactions)
	}
	page := make([]models.Transaction, end-offset)
	copy(page, m.transactions[offset:end])
	return page, nil
}

// QueryTransactions filters on calendar days of the started date, currency and type.
func (m *Memory) QueryTransactions(ctx context.Context, q Query) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("query transactions", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Transaction
	for _, tx := range m.transactions {
		if q.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// InsertTransactions appends txs atomically, assigning ids and creation times.
func (m *Memory) InsertTransactions(ctx context.Context, txs []models.Transaction) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrap("insert transactions", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[string]struct{}, len(m.transactions)+len(txs))
	for _, tx := range m.transactions {
		ids[tx.ID] = struct{}{}
	}

	now := m.now()
	rows := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if _, dup := ids[tx.ID]; dup {
			return 0, wrap("insert transactions", fmt.Errorf("%w: duplicate id %s", ErrConflict, tx.ID))
		}
		ids[tx.ID] = struct{}{}
		tx.CreatedAt = now
		tx.Line = 0
		rows = append(rows, tx)
	}
	m.transactions = append(m.transactions, rows...)
	return len(rows), nil
}

// DeleteTransaction removes a transaction by id.
func (m *Memory) DeleteTransaction(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return wrap("delete transaction", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, tx := range m.transactions {
		if tx.ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return wrap("delete transaction", fmt.Errorf("%w: transaction %s", ErrNotFound, id))
}

// ListCategories returns categories ordered by name.
func (m *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrap("list categories", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Category, len(m.categories))
	copy(out, m.categories)
	sortCategories(out)
	return out, nil
}

// CreateCategory inserts a category with a unique name.
func (m *Memory) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	if err := ctx.Err(); err != nil {
		return models.Category{}, wrap("create category", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(in.Name, "") {
		return models.Category{}, wrap("create category", fmt.Errorf("%w: category %q already exists", ErrConflict, in.Name))
	}
	now := m.now()
	c := models.Category{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	in.Apply(&c)
	m.categories = append(m.categories, c)
	return c, nil
}

// UpdateCategory replaces the writable fields of a category.
func (m *Memory) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (models.Category, error) {
	if err := ctx.Err(); err != nil {
		return models.Category{}, wrap("update category", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.categories {
		if m.categories[i].ID != id {
			continue
		}
		if m.nameTaken(in.Name, id) {
			return models.Category{}, wrap("update category", fmt.Errorf("%w: category %q already exists", ErrConflict, in.Name))
		}
		in.Apply(&m.categories[i])
		m.categories[i].UpdatedAt = m.now()
		return m.categories[i], nil
	}
	return models.Category{}, wrap("update category", fmt.Errorf("%w: category %s", ErrNotFound, id))
}

// DeleteCategory removes a category by id.
func (m *Memory) DeleteCategory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return wrap("delete category", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, c := range m.categories {
		if c.ID == id {
			m.categories = append(m.categories[:i], m.categories[i+1:]...)
			return nil
		}
	}
	return wrap("delete category", fmt.Errorf("%w: category %s", ErrNotFound, id))
}

func (m *Memory) nameTaken(name, exceptID string) bool {
	for _, c := range m.categories {
		if c.Name == name && c.ID != exceptID {
			return true
		}
	}
	return false
}
