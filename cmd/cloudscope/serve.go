package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/cloudscope/internal/storage"
	"github.com/user/cloudscope/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the collector server",
	Long: `Start the collector server and web dashboard.

The server provides:
- A results endpoint scanners report batches to
- A dashboard listing discovered hosts
- JSON APIs for hosts, stats and selection toggles
- CSV and XLSX exports

Examples:
  cloudscope serve
  cloudscope serve --port 8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize database
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Starting collector on http://localhost:%d\n", servePort)
	fmt.Println("Press Ctrl+C to stop")

	srv := web.NewServer(db, cfg, servePort)
	return srv.Start()
}
