package common

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fjacquet/finance-dashboard/cmd/root"
	"fjacquet/finance-dashboard/internal/config"
	"fjacquet/finance-dashboard/internal/container"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/store"
)

// UseStore makes every command run against s with the default configuration
// and a discarding logger. It returns a function restoring the previous factory.
func UseStore(s store.Store) (restore func()) {
	previous := root.NewContainer
	root.NewContainer = func(ctx context.Context) (*container.Container, error) {
		cfg := config.Defaults()
		cfg.Store.Driver = config.DriverMemory
		return container.NewContainer(ctx, cfg,
			container.WithStore(s),
			container.WithLogger(logging.NewDiscardLogger()))
	}
	return func() { root.NewContainer = previous }
}

// ResetFlags restores every flag of cmd and its subcommands to its default
// and clears the changed marks, so a command can be executed repeatedly.
func ResetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		ResetFlags(sub)
	}
}
