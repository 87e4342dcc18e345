// Package summary prints grouped spending figures.
package summary

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fjacquet/finance-dashboard/cmd/common"
	"fjacquet/finance-dashboard/internal/container"
	"fjacquet/finance-dashboard/internal/filter"
	"fjacquet/finance-dashboard/internal/report"
	"fjacquet/finance-dashboard/internal/validation"
)

var (
	by       string
	absolute bool
	members  bool
	format   string
	noColor  bool
	filters  *common.FilterFlags
)

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize transactions by merchant, category, month or currency",
	Long: `Group the stored transactions, optionally filtered, and print count, total and
average per group. Months are listed in order; other groups by descending total.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVar(&by, "by", string(report.ByMerchant), "group by merchant, category, month or currency")
	Cmd.Flags().BoolVar(&absolute, "absolute", false, "rank and total by absolute amounts")
	Cmd.Flags().BoolVar(&members, "members", false, "include the transactions of each group (json and yaml only)")
	Cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	Cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored table output")
	filters = common.AddFilterFlags(Cmd)
}

func run(cmd *cobra.Command, _ []string) error {
	dim, err := report.ParseDimension(by)
	if err != nil {
		return err
	}
	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}
	crit, err := filters.Criteria()
	if err != nil {
		return err
	}

	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		txs, err := filter.Load(ctx, c.GetStore(), crit)
		if err != nil {
			return err
		}
		s := report.Build(txs, dim, absolute, members)

		out := cmd.OutOrStdout()
		gen := c.GetReportGenerator()
		if format == "table" {
			return gen.WriteTable(out, s, !noColor && !color.NoColor)
		}
		data, err := gen.Generate(s, format)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	})
}
