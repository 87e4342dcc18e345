// Package dedup partitions an incoming batch of transactions into new and
// duplicate ones relative to what is already stored.
package dedup

import (
	"strings"

	"fjacquet/finance-dashboard/internal/dateutils"
	"fjacquet/finance-dashboard/internal/models"
)

// KeyFunc derives the identity key of a transaction. ok is false when no key
// can be built; such transactions are never considered duplicates.
type KeyFunc func(tx models.Transaction) (key string, ok bool)

// Partition is the result of splitting a batch. Both slices keep input order.
type Partition struct {
	New        []models.Transaction `json:"new"`
	Duplicates []models.Transaction `json:"duplicates"`
}

// Engine applies a KeyFunc. The zero value is not usable; call New.
type Engine struct {
	key KeyFunc
}

// New creates an Engine. A nil key function means DefaultKey.
func New(key KeyFunc) *Engine {
	if key == nil {
		key = DefaultKey
	}
	return &Engine{key: key}
}

// NormalizeDate replaces the first 'T' with a space, cuts at the first '+' and trims.
func NormalizeDate(date string) string {
	return dateutils.NormalizeTimestamp(date)
}

// DefaultKey is lower(trim(date | amount | type)) with the date normalized and
// the amount in canonical decimal form. Two distinct transactions sharing the
// triple collide.
func DefaultKey(tx models.Transaction) (string, bool) {
	date := NormalizeDate(tx.StartedDate)
	if date == "" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(date + "|" + tx.Amount.String() + "|" + tx.Type)), true
}

// KeyWithDescription extends DefaultKey with the description, which separates
// same-time same-amount payments to different merchants.
func KeyWithDescription(tx models.Transaction) (string, bool) {
	base, ok := DefaultKey(tx)
	if !ok {
		return "", false
	}
	return base + "|" + strings.ToLower(strings.TrimSpace(tx.Description)), true
}

// Partition classifies incoming against existing. The first occurrence of a key
// inside incoming is new; later ones are duplicates.
func (e *Engine) Partition(incoming, existing []models.Transaction) Partition {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, tx := range existing {
		if k, ok := e.key(tx); ok {
			seen[k] = struct{}{}
		}
	}

	var p Partition
	for _, tx := range incoming {
		k, ok := e.key(tx)
		if !ok {
			p.New = append(p.New, tx)
			continue
		}
		if _, dup := seen[k]; dup {
			p.Duplicates = append(p.Duplicates, tx)
			continue
		}
		seen[k] = struct{}{}
		p.New = append(p.New, tx)
	}
	return p
}

// Key exposes the engine's key function.
func (e *Engine) Key(tx models.Transaction) (string, bool) {
	return e.key(tx)
}
