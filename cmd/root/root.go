// Package root contains the root command for the application
package root

import (
	"context"

	"github.com/spf13/cobra"

	"fjacquet/finance-dashboard/internal/config"
	"fjacquet/finance-dashboard/internal/container"
)

var (
	// ConfigFile is the --config flag; empty searches the standard locations.
	ConfigFile string

	// NewContainer builds the dependencies of a command. Tests replace it to
	// share one in-memory store between commands.
	NewContainer = func(ctx context.Context) (*container.Container, error) {
		cfg, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		return container.NewContainer(ctx, cfg)
	}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "findash",
		Short: "Import bank statements and explore spending.",
		Long: `findash imports bank statement CSV exports into a store, skipping transactions
it has already seen, and summarizes spending by merchant, category and month.
Run "findash serve" for the HTTP API used by the dashboard.`,
		SilenceUsage: true,
	}
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "config file (default searches ., .findash and $HOME/.findash for config.yaml)")
}

// LoadConfig reads the configuration selected by --config.
func LoadConfig() (*config.Config, error) {
	return config.Load(ConfigFile)
}
