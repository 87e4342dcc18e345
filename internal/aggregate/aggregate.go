// Package aggregate groups transactions by a label and computes per-group
// counts, sums and averages. Results are recomputed on every call.
package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/finance-dashboard/internal/currencyutils"
	"fjacquet/finance-dashboard/internal/dateutils"
	"fjacquet/finance-dashboard/internal/models"
)

// KeyFunc returns the group label of a transaction. An empty label is
// replaced by models.UnknownLabel.
type KeyFunc func(tx *models.Transaction) string

// Bucket accumulates the transactions sharing one label.
type Bucket struct {
	Name                  string                `json:"name" yaml:"name"`
	Count                 int                   `json:"count" yaml:"count"`
	TotalAmount           decimal.Decimal       `json:"totalAmount" yaml:"total_amount"`
	AverageAmount         decimal.Decimal       `json:"averageAmount" yaml:"average_amount"`
	TotalAbsoluteAmount   decimal.Decimal       `json:"totalAbsoluteAmount" yaml:"total_absolute_amount"`
	AverageAbsoluteAmount decimal.Decimal       `json:"averageAbsoluteAmount" yaml:"average_absolute_amount"`
	Members               []*models.Transaction `json:"members,omitempty" yaml:"members,omitempty"`
}

// Grouping is an insertion-ordered set of buckets.
type Grouping struct {
	buckets []*Bucket
	index   map[string]int
}

// ByDescription groups on the merchant description.
func ByDescription(tx *models.Transaction) string {
	return strings.TrimSpace(tx.Description)
}

// ByProduct groups on the product column, used as the category.
func ByProduct(tx *models.Transaction) string {
	return strings.TrimSpace(tx.Product)
}

// ByMonth groups on the YYYY-MM of the started date.
func ByMonth(tx *models.Transaction) string {
	started, ok := tx.StartedTime()
	if !ok {
		return ""
	}
	return dateutils.MonthKey(started)
}

// ByCurrency groups on the currency code.
func ByCurrency(tx *models.Transaction) string {
	return strings.ToUpper(strings.TrimSpace(tx.Currency))
}

// GroupBy groups txs. Members point into txs; the slice must outlive the grouping.
func GroupBy(txs []models.Transaction, key KeyFunc) *Grouping {
	ptrs := make([]*models.Transaction, len(txs))
	for i := range txs {
		ptrs[i] = &txs[i]
	}
	return GroupPointers(ptrs, key)
}

// GroupPointers groups an already-filtered view without copying transactions.
func GroupPointers(txs []*models.Transaction, key KeyFunc) *Grouping {
	if key == nil {
		key = ByDescription
	}
	g := &Grouping{index: make(map[string]int)}

	for _, tx := range txs {
		name := key(tx)
		if name == "" {
			name = models.UnknownLabel
		}
		i, ok := g.index[name]
		if !ok {
			i = len(g.buckets)
			g.index[name] = i
			g.buckets = append(g.buckets, &Bucket{Name: name})
		}
		b := g.buckets[i]
		b.Count++
		b.TotalAmount = b.TotalAmount.Add(tx.Amount)
		b.TotalAbsoluteAmount = b.TotalAbsoluteAmount.Add(tx.Amount.Abs())
		b.Members = append(b.Members, tx)
	}

	for _, b := range g.buckets {
		b.AverageAmount = currencyutils.Average(b.TotalAmount, b.Count)
		b.AverageAbsoluteAmount = currencyutils.Average(b.TotalAbsoluteAmount, b.Count)
	}
	return g
}

// Get returns the bucket of a label.
func (g *Grouping) Get(name string) (*Bucket, bool) {
	i, ok := g.index[name]
	if !ok {
		return nil, false
	}
	return g.buckets[i], true
}

// Len is the number of distinct labels.
func (g *Grouping) Len() int {
	return len(g.buckets)
}

// Buckets returns the buckets in first-seen order.
func (g *Grouping) Buckets() []*Bucket {
	out := make([]*Bucket, len(g.buckets))
	copy(out, g.buckets)
	return out
}

// Sorted returns the buckets by descending total; ties keep first-seen order.
func (g *Grouping) Sorted() []*Bucket {
	out := g.Buckets()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAmount.GreaterThan(out[j].TotalAmount)
	})
	return out
}

// SortedByAbsolute returns the buckets by descending absolute total; ties keep
// first-seen order.
func (g *Grouping) SortedByAbsolute() []*Bucket {
	out := g.Buckets()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAbsoluteAmount.GreaterThan(out[j].TotalAbsoluteAmount)
	})
	return out
}

// WithoutMembers returns copies of buckets with the member lists dropped,
// for responses that only need the figures.
func WithoutMembers(buckets []*Bucket) []*Bucket {
	out := make([]*Bucket, len(buckets))
	for i, b := range buckets {
		c := *b
		c.Members = nil
		out[i] = &c
	}
	return out
}
