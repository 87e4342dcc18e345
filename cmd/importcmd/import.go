// Package importcmd imports a statement file from the command line.
package importcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/finance-dashboard/cmd/common"
	"fjacquet/finance-dashboard/internal/container"
	"fjacquet/finance-dashboard/internal/fileutils"
	"fjacquet/finance-dashboard/internal/importer"
)

var (
	assumeYes bool
	showDups  bool
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import a bank statement CSV",
	Long: `Parse a bank statement CSV, skip rows already in the store and, after
confirmation, save the new transactions.`,
	Args: cobra.ExactArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "import without asking for confirmation")
	Cmd.Flags().BoolVar(&showDups, "show-duplicates", false, "list the rows skipped as duplicates")
}

func run(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := fileutils.OpenFile(path)
	if err != nil {
		return fmt.Errorf("error opening statement: %w", err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	var confirm importer.Confirmer = importer.AutoConfirm
	if !assumeYes {
		confirm = Prompt(cmd.InOrStdin(), out, showDups)
	}

	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		result, err := c.GetImporter().Import(ctx, importer.File{Name: filepath.Base(path), Content: f}, nil, confirm)
		fmt.Fprintln(out, result.Message)
		return err
	})
}

// Prompt asks on out and reads a y/N answer from in. Anything but y or yes,
// including end of input, declines.
func Prompt(in io.Reader, out io.Writer, listDuplicates bool) importer.Confirmer {
	reader := bufio.NewReader(in)
	return importer.ConfirmFunc(func(_ context.Context, plan *importer.Plan) (bool, error) {
		fmt.Fprintf(out, "%s: %d parsed, %d new, %d duplicates", plan.FileName, plan.Parsed, plan.NewCount(), plan.DuplicateCount())
		if plan.Skipped > 0 || plan.Dropped > 0 {
			fmt.Fprintf(out, ", %d malformed and %d incomplete rows skipped", plan.Skipped, plan.Dropped)
		}
		fmt.Fprintln(out)
		if listDuplicates {
			for _, tx := range plan.Partition.Duplicates {
				fmt.Fprintf(out, "  duplicate: %s  %s  %s %s\n", tx.StartedDate, tx.Description, tx.Amount.String(), tx.Currency)
			}
		}
		fmt.Fprintf(out, "Import %d transactions? [y/N]: ", plan.NewCount())

		answer, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}
