// Command susradar runs the SusRadar record service and its maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/susradar/internal/app"
	"github.com/MrSnakeDoc/susradar/internal/config"
	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ susradar: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "susradar",
		Short:         "Track how suspicious the companies behind websites are",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.AddCommand(
		newServeCmd(),
		newResolveCmd(),
		newListCmd(),
		newExportCmd(),
		newImportCmd(),
		newSyncCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()
	a, err := app.New(cfg, logger.New(cfg.LogLevel, cfg.PrettyLog))
	if err != nil {
		return err
	}
	return a.Run()
}

// withApp runs fn against a seeded app, then releases the backend.
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg := config.Load()
	a, err := app.New(cfg, logger.New(cfg.LogLevel, cfg.PrettyLog))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}
	return fn(a)
}
