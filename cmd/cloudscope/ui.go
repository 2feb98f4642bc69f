package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/cloudscope/internal/storage"
	"github.com/user/cloudscope/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the terminal dashboard",
	Long: `Launch an interactive terminal dashboard over the collector database.

The dashboard shows:
- Total and selected host counts
- Per-provider breakdown
- Recently discovered hosts

Press 'r' to refresh, 'q' to quit.`,
	RunE: runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	// Initialize database
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app := tui.NewApp(db)
	return app.Run()
}
