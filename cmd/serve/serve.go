// Package serve runs the HTTP API.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fjacquet/finance-dashboard/cmd/common"
	"fjacquet/finance-dashboard/internal/container"
	"fjacquet/finance-dashboard/internal/logging"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard HTTP API",
	Long: `Serve the JSON API used by the dashboard: transactions, summaries, statistics,
statement import with preview, and category management.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
}

func run(cmd *cobra.Command, _ []string) error {
	return common.WithContainer(cmd, func(ctx context.Context, c *container.Container) error {
		cfg := c.GetConfig()
		if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
			gin.SetMode(gin.ReleaseMode)
		}

		listen := addr
		if listen == "" {
			listen = cfg.Server.Addr
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		c.GetLogger().Info("Serving dashboard API",
			logging.F("addr", listen),
			logging.F("allowed_origins", cfg.Server.AllowedOrigins))
		return c.NewServer().Run(ctx, listen)
	})
}
