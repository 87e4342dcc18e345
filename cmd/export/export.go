// Package export writes stored transactions to CSV.
package export

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/finance-dashboard/cmd/common"
	csvexport "fjacquet/finance-dashboard/internal/common"
	"fjacquet/finance-dashboard/internal/container"
	"fjacquet/finance-dashboard/internal/filter"
	"fjacquet/finance-dashboard/internal/models"
)

var (
	output  string
	filters *common.FilterFlags
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to CSV",
	Long:  `Write the stored transactions, optionally filtered, as CSV to a file or standard output.`,
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default standard output)")
	filters = common.AddFilterFlags(Cmd)
}

func run(cmd *cobra.Command, _ []string) error {
	crit, err := filters.Criteria()
	if err != nil {
		return err
	}

	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		matched, err := filter.Load(ctx, c.GetStore(), crit)
		if err != nil {
			return err
		}
		txs := make([]models.Transaction, len(matched))
		for i, tx := range matched {
			txs[i] = *tx
		}

		if output == "" {
			return csvexport.WriteTransactionsCSV(cmd.OutOrStdout(), txs, c.Delimiter())
		}
		if err := csvexport.WriteTransactionsToFile(output, txs, c.Delimiter(), c.GetLogger()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d transactions to %s\n", len(txs), output)
		return nil
	})
}
