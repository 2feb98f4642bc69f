package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/cloudscope/internal/export"
	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/storage"
)

var (
	exportFormat string
	exportOutput string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export hosts to CSV or XLSX",
	Long: `Export hosts from the collector database.

By default only selected hosts are exported, matching the dashboard's
export links.

Examples:
  cloudscope export
  cloudscope export --format xlsx
  cloudscope export --all -o ./hosts.csv`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv",
		"Output format (csv, xlsx)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "",
		"Output file path (default: auto-generated)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false,
		"Export every host, not just selected ones")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "xlsx" {
		return fmt.Errorf("unknown format %q (want csv or xlsx)", exportFormat)
	}

	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	hostStorage := storage.NewHostStorage(db)

	var hosts []model.HostRecord
	if exportAll {
		page, err := hostStorage.List(model.HostFilter{Page: 1, PerPage: 10000})
		if err != nil {
			return fmt.Errorf("failed to list hosts: %w", err)
		}
		hosts = page.Hosts
	} else {
		hosts, err = hostStorage.GetSelected()
		if err != nil {
			return fmt.Errorf("failed to load selected hosts: %w", err)
		}
	}

	if len(hosts) == 0 {
		fmt.Println("Nothing to export")
		return nil
	}

	path := exportOutput
	if path == "" {
		path = export.Filename(exportFormat, time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	registry := provider.Default()
	if exportFormat == "xlsx" {
		err = export.WriteXLSX(f, registry, hosts)
	} else {
		err = export.WriteCSV(f, registry, hosts)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Exported %d hosts to %s\n", len(hosts), path)
	return nil
}
