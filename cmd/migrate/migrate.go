// Package migrate applies the store schema migrations.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/finance-dashboard/cmd/root"
	"fjacquet/finance-dashboard/internal/config"
	"fjacquet/finance-dashboard/internal/store"
)

var down int

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  `Apply every pending schema migration to the PostgreSQL store, or roll back with --down.`,
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	Cmd.Flags().IntVar(&down, "down", 0, "roll back this many migrations instead of applying")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires the %s store driver, configured: %s", config.DriverPostgres, cfg.Store.Driver)
	}

	dsn := cfg.Store.Postgres.DSN()
	var result store.MigrationResult
	if down > 0 {
		result, err = store.MigrateDown(dsn, down)
	} else {
		result, err = store.Migrate(dsn)
	}
	if err != nil {
		return err
	}

	state := "unchanged"
	if result.Changed {
		state = "changed"
	}
	if result.Dirty {
		state += ", dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d (%s)\n", result.Version, state)
	return nil
}
