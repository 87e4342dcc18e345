package main

import (
	"fmt"
	"os"

	"fjacquet/finance-dashboard/cmd/categories"
	"fjacquet/finance-dashboard/cmd/export"
	"fjacquet/finance-dashboard/cmd/importcmd"
	"fjacquet/finance-dashboard/cmd/migrate"
	"fjacquet/finance-dashboard/cmd/root"
	"fjacquet/finance-dashboard/cmd/serve"
	"fjacquet/finance-dashboard/cmd/summary"
	"fjacquet/finance-dashboard/internal/config"
)

func init() {
	// .env must be loaded before viper reads the environment
	config.LoadEnv(nil)

	root.Init()

	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(migrate.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
