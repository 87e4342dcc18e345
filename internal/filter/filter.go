// Package filter narrows a snapshot of transactions by date range, currency,
// type, product, state, free text and amount bounds.
package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/finance-dashboard/internal/dateutils"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/store"
)

// Query parameter names understood by ParseCriteria.
const (
	ParamFrom     = "from"
	ParamTo       = "to"
	ParamCurrency = "currency"
	ParamType     = "type"
	ParamProduct  = "product"
	ParamState    = "state"
	ParamSearch   = "search"
	ParamMin      = "min"
	ParamMax      = "max"
)

// Params lists every parameter name, in the order they are documented.
var Params = []string{ParamFrom, ParamTo, ParamCurrency, ParamType, ParamProduct, ParamState, ParamSearch, ParamMin, ParamMax}

// Criteria is a conjunction of optional conditions. Zero fields match everything.
// From and To compare calendar days of the started date, both inclusive.
type Criteria struct {
	From      time.Time
	To        time.Time
	Currency  string
	Type      string
	Product   string
	State     string
	Search    string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// IsZero reports whether no condition is set.
func (c Criteria) IsZero() bool {
	return c.From.IsZero() && c.To.IsZero() && c.Currency == "" && c.Type == "" &&
		c.Product == "" && c.State == "" && c.Search == "" && c.MinAmount == nil && c.MaxAmount == nil
}

// Apply returns pointers to the matching transactions, in input order.
func (c Criteria) Apply(txs []models.Transaction) []*models.Transaction {
	out := make([]*models.Transaction, 0, len(txs))
	for i := range txs {
		if c.Matches(&txs[i]) {
			out = append(out, &txs[i])
		}
	}
	return out
}

// Matches reports whether tx satisfies every set condition. A transaction
// whose started date cannot be parsed never matches a date bound.
func (c Criteria) Matches(tx *models.Transaction) bool {
	if !c.From.IsZero() || !c.To.IsZero() {
		started, ok := tx.StartedTime()
		if !ok {
			return false
		}
		if !c.From.IsZero() && dateutils.CompareDates(started, c.From) < 0 {
			return false
		}
		if !c.To.IsZero() && dateutils.CompareDates(started, c.To) > 0 {
			return false
		}
	}
	if !equalFold(c.Currency, tx.Currency) || !equalFold(c.Type, tx.Type) ||
		!equalFold(c.Product, tx.Product) || !equalFold(c.State, tx.State) {
		return false
	}
	if c.Search != "" && !strings.Contains(strings.ToLower(tx.Description), strings.ToLower(strings.TrimSpace(c.Search))) {
		return false
	}
	if c.MinAmount != nil && tx.Amount.LessThan(*c.MinAmount) {
		return false
	}
	if c.MaxAmount != nil && tx.Amount.GreaterThan(*c.MaxAmount) {
		return false
	}
	return true
}

// StoreQuery returns the subset of the criteria the store can evaluate.
// Apply must still run on the result for the remaining conditions.
func (c Criteria) StoreQuery() store.Query {
	return store.Query{
		From:     c.From,
		To:       c.To,
		Currency: strings.ToUpper(strings.TrimSpace(c.Currency)),
		Type:     strings.TrimSpace(c.Type),
	}
}

// Load fetches the stored transactions matching c. The store narrows what it
// can; c is then applied in full.
func Load(ctx context.Context, s store.TransactionStore, c Criteria) ([]*models.Transaction, error) {
	var (
		txs []models.Transaction
		err error
	)
	if c.IsZero() {
		txs, err = s.ListTransactions(ctx)
	} else {
		txs, err = s.QueryTransactions(ctx, c.StoreQuery())
	}
	if err != nil {
		return nil, err
	}
	return c.Apply(txs), nil
}

// ParseCriteria builds criteria from query parameters. Empty values are ignored.
func ParseCriteria(params map[string]string) (Criteria, error) {
	var c Criteria
	get := func(k string) string { return strings.TrimSpace(params[k]) }

	if v := get(ParamFrom); v != "" {
		t, _, err := dateutils.ParseDate(v)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid %s: %w", ParamFrom, err)
		}
		c.From = t
	}
	if v := get(ParamTo); v != "" {
		t, _, err := dateutils.ParseDate(v)
		if err != nil {
			return Criteria{}, fmt.Errorf("invalid %s: %w", ParamTo, err)
		}
		c.To = t
	}
	if !c.From.IsZero() && !c.To.IsZero() && dateutils.CompareDates(c.From, c.To) > 0 {
		return Criteria{}, fmt.Errorf("invalid range: %s is after %s", ParamFrom, ParamTo)
	}

	c.Currency = get(ParamCurrency)
	c.Type = get(ParamType)
	c.Product = get(ParamProduct)
	c.State = get(ParamState)
	c.Search = get(ParamSearch)

	var err error
	if c.MinAmount, err = parseBound(ParamMin, get(ParamMin)); err != nil {
		return Criteria{}, err
	}
	if c.MaxAmount, err = parseBound(ParamMax, get(ParamMax)); err != nil {
		return Criteria{}, err
	}
	if c.MinAmount != nil && c.MaxAmount != nil && c.MinAmount.GreaterThan(*c.MaxAmount) {
		return Criteria{}, fmt.Errorf("invalid range: %s is greater than %s", ParamMin, ParamMax)
	}
	return c, nil
}

func parseBound(name, v string) (*decimal.Decimal, error) {
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return &d, nil
}

// equalFold is true when want is empty or equals got ignoring case and padding.
func equalFold(want, got string) bool {
	if want == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
}
