package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"fjacquet/finance-dashboard/internal/dateutils"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
)

const uniqueViolation = "23505"

const transactionColumns = `id::text, type, product, started_date, completed_date, description,
	amount::text, fee::text, balance::text, currency, state, created_at`

const categoryColumns = `id::text, name, description, color, created_at, updated_at`

// PostgresOptions configures NewPostgres.
type PostgresOptions struct {
	DSN      string
	MaxConns int32
	PageSize int
	Logger   logging.Logger
}

// Postgres is the PostgreSQL Store backed by a pgx connection pool.
type Postgres struct {
	pool     *pgxpool.Pool
	pageSize int
	logger   logging.Logger
}

// NewPostgres connects and pings the database.
func NewPostgres(ctx context.Context, opts PostgresOptions) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, wrap("connect", fmt.Errorf("invalid DSN: %w", err))
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, wrap("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrap("connect", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Postgres{pool: pool, pageSize: pageSize, logger: logger}, nil
}

// Ping checks connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return wrap("ping", p.pool.Ping(ctx))
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// ListTransactions pages through the table ordered by started date then id.
func (p *Postgres) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	page := 0
	txs, err := fetchAll(ctx, p.pageSize, func(ctx context.Context, offset, limit int) ([]models.Transaction, error) {
		page++
		p.logger.Debug("Fetching transactions page", logging.F(logging.FieldPage, page))
		rows, err := p.pool.Query(ctx,
			`SELECT `+transactionColumns+` FROM transactions
			 ORDER BY started_date, id LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return nil, err
		}
		return collectTransactions(rows)
	})
	return txs, wrap("list transactions", err)
}

// isoStartedDate matches rows whose started date sorts as text in date order.
const isoStartedDate = `started_date ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}'`

// QueryTransactions filters in SQL, then applies q.Matches to the rows. Date
// bounds are pushed down only for ISO started dates; rows in other layouts are
// fetched and range-checked after parsing, as in the memory store.
func (p *Postgres) QueryTransactions(ctx context.Context, q Query) ([]models.Transaction, error) {
	sql, args := transactionQuery(q)
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap("query transactions", err)
	}
	txs, err := collectTransactions(rows)
	if err != nil {
		return nil, wrap("query transactions", err)
	}

	out := txs[:0]
	for _, tx := range txs {
		if q.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func transactionQuery(q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if !q.From.IsZero() {
		add("(NOT "+isoStartedDate+" OR started_date >= $%d)", dateutils.ToISODate(q.From))
	}
	if !q.To.IsZero() {
		add("(NOT "+isoStartedDate+" OR started_date < $%d)", dateutils.ToISODate(q.To.AddDate(0, 0, 1)))
	}
	if q.Currency != "" {
		add("upper(currency) = upper($%d)", q.Currency)
	}
	if q.Type != "" {
		add("upper(type) = upper($%d)", q.Type)
	}

	sql := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	return sql + " ORDER BY started_date, id", args
}

// InsertTransactions inserts the batch in a single database transaction.
func (p *Postgres) InsertTransactions(ctx context.Context, txs []models.Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	start := time.Now()

	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range txs {
			id := t.ID
			if id == "" {
				id = uuid.NewString()
			}
			batch.Queue(`INSERT INTO transactions
				(id, type, product, started_date, completed_date, description, amount, fee, balance, currency, state)
				VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8::numeric, $9::numeric, $10, $11)`,
				id, t.Type, t.Product, t.StartedDate, t.CompletedDate, t.Description,
				t.Amount.String(), t.Fee.String(), t.Balance.String(), t.Currency, t.State)
		}

		results := tx.SendBatch(ctx, batch)
		for range txs {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return mapPgError(err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, wrap("insert transactions", err)
	}

	p.logger.Info("Inserted transactions",
		logging.F(logging.FieldCount, len(txs)),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return len(txs), nil
}

// DeleteTransaction removes one transaction.
func (p *Postgres) DeleteTransaction(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return wrap("delete transaction", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return wrap("delete transaction", fmt.Errorf("%w: transaction %s", ErrNotFound, id))
	}
	return nil
}

// ListCategories returns categories ordered by name.
func (p *Postgres) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	cs, err := pgx.CollectRows(rows, scanCategory)
	return cs, wrap("list categories", err)
}

// CreateCategory inserts a category; a taken name yields ErrConflict.
func (p *Postgres) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	rows, err := p.pool.Query(ctx,
		`INSERT INTO categories (id, name, description, color)
		 VALUES ($1, $2, $3, $4) RETURNING `+categoryColumns,
		uuid.NewString(), in.Name, in.Description, in.Color)
	if err != nil {
		return models.Category{}, wrap("create category", mapPgError(err))
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	return c, wrap("create category", mapPgError(err))
}

// UpdateCategory replaces name, description and color.
func (p *Postgres) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (models.Category, error) {
	rows, err := p.pool.Query(ctx,
		`UPDATE categories SET name = $2, description = $3, color = $4, updated_at = now()
		 WHERE id = $1 RETURNING `+categoryColumns,
		id, in.Name, in.Description, in.Color)
	if err != nil {
		return models.Category{}, wrap("update category", mapPgError(err))
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Category{}, wrap("update category", fmt.Errorf("%w: category %s", ErrNotFound, id))
	}
	return c, wrap("update category", mapPgError(err))
}

// DeleteCategory removes one category.
func (p *Postgres) DeleteCategory(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrap("delete category", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return wrap("delete category", fmt.Errorf("%w: category %s", ErrNotFound, id))
	}
	return nil
}

func collectTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		var (
			t                    models.Transaction
			amount, fee, balance string
		)
		err := row.Scan(&t.ID, &t.Type, &t.Product, &t.StartedDate, &t.CompletedDate, &t.Description,
			&amount, &fee, &balance, &t.Currency, &t.State, &t.CreatedAt)
		if err != nil {
			return t, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return t, fmt.Errorf("amount of %s: %w", t.ID, err)
		}
		if t.Fee, err = decimal.NewFromString(fee); err != nil {
			return t, fmt.Errorf("fee of %s: %w", t.ID, err)
		}
		if t.Balance, err = decimal.NewFromString(balance); err != nil {
			return t, fmt.Errorf("balance of %s: %w", t.ID, err)
		}
		return t, nil
	})
}

func scanCategory(row pgx.CollectableRow) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// mapPgError tags unique violations with ErrConflict, keeping the server message.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.Message)
	}
	return err
}
