// Package common contains shared functionality for command handlers
package common

import (
	"context"

	"github.com/spf13/cobra"

	"fjacquet/finance-dashboard/cmd/root"
	"fjacquet/finance-dashboard/internal/container"
	"fjacquet/finance-dashboard/internal/filter"
)

// FilterFlags are the transaction filter flags shared by summary and export.
type FilterFlags struct {
	values map[string]*string
}

var filterUsage = map[string]string{
	filter.ParamFrom:     "first started date to include (e.g. 2024-01-01)",
	filter.ParamTo:       "last started date to include",
	filter.ParamCurrency: "currency code",
	filter.ParamType:     "transaction type (e.g. CARD_PAYMENT)",
	filter.ParamProduct:  "product / category",
	filter.ParamState:    "transaction state (e.g. COMPLETED)",
	filter.ParamSearch:   "substring of the description",
	filter.ParamMin:      "minimum signed amount",
	filter.ParamMax:      "maximum signed amount",
}

// AddFilterFlags registers one flag per filter parameter on cmd.
func AddFilterFlags(cmd *cobra.Command) *FilterFlags {
	f := &FilterFlags{values: make(map[string]*string, len(filter.Params))}
	for _, p := range filter.Params {
		f.values[p] = cmd.Flags().String(p, "", filterUsage[p])
	}
	return f
}

// Criteria parses the flag values.
func (f *FilterFlags) Criteria() (filter.Criteria, error) {
	params := make(map[string]string, len(f.values))
	for k, v := range f.values {
		params[k] = *v
	}
	return filter.ParseCriteria(params)
}

// WithContainer builds the dependencies, runs fn and releases them.
func WithContainer(cmd *cobra.Command, fn func(ctx context.Context, c *container.Container) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := root.NewContainer(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
	}()
	return fn(ctx, c)
}
