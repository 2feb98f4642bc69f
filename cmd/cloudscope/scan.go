package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/cloudscope/internal/engine"
	"github.com/user/cloudscope/internal/geo"
	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/probe"
	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/report"
	"github.com/user/cloudscope/internal/source"
)

var (
	scanSource   string
	scanCountry  string
	scanProvider string
	scanWorkers  int
	scanDryRun   bool
)

const discoveryTimeout = 30 * time.Second

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a discovery scan",
	Long: `Run a discovery scan against one or all cloud providers.

Candidates come from the selected source, are resolved, geolocated,
probed over HTTP(S) and classified against provider fingerprints.
Matches are reported to the collector in batches.

Examples:
  cloudscope scan --source cert --country SA
  cloudscope scan --source index --provider heroku
  cloudscope scan --source ranges --country DE --dry-run`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanSource, "source", "s", "cert",
		"Candidate source (cert, ranges, index)")
	scanCmd.Flags().StringVarP(&scanCountry, "country", "c", "",
		"Target country code (default from config)")
	scanCmd.Flags().StringVarP(&scanProvider, "provider", "p", "",
		"Scan a single provider by key (default: all)")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0,
		"Probe worker count (default from config)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false,
		"Print matches instead of reporting them")
}

func runScan(cmd *cobra.Command, args []string) error {
	country := strings.ToUpper(scanCountry)
	if country == "" {
		country = strings.ToUpper(cfg.ScanCountry)
	}

	src, err := buildSource()
	if err != nil {
		return err
	}

	var sink report.Sink
	if scanDryRun {
		sink = &printSink{}
	} else {
		if cfg.APIEndpoint == "" {
			return fmt.Errorf("no API endpoint configured; use --dry-run to scan without a collector")
		}
		sink = report.NewHTTPSink(cfg.APIEndpoint, cfg.APIKey, 10*time.Second)
	}

	workers := scanWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	opts := engine.Options{
		TargetCountry:   country,
		FilterCountry:   cfg.FilterCountry,
		KeepUnreachable: cfg.KeepUnreachable,
		Workers:         workers,
		ProbeTimeout:    cfg.ProbeTimeout,
		BatchSize:       cfg.BatchSize,
		FlushDelay:      cfg.FlushDelay,
		ProviderDelay:   cfg.ProviderDelay,
	}

	registry := provider.Default()
	eng := engine.New(opts, src, registry,
		geo.NewResolver(),
		geo.NewLocator(cfg.IPInfoToken, 10*time.Second),
		probe.New(cfg.ProbeTimeout),
		sink,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Scanning via %s source (country %s, %d workers)\n",
		scanSource, country, workers)

	start := time.Now()
	var summaries []model.ScanSummary
	if scanProvider != "" {
		summaries, err = eng.RunProvider(ctx, scanProvider)
	} else {
		summaries, err = eng.Run(ctx)
	}

	printSummaries(summaries, time.Since(start))
	return err
}

func buildSource() (source.Source, error) {
	timeout := discoveryTimeout
	switch scanSource {
	case "cert":
		return source.NewCertSource(cfg.ProviderCap, timeout), nil
	case "ranges":
		return source.NewRangeSource(cfg.ProviderCap, timeout), nil
	case "index":
		return source.NewIndexSource(cfg.ShodanKey, cfg.ProviderCap, timeout)
	default:
		return nil, fmt.Errorf("unknown source %q (want cert, ranges or index)", scanSource)
	}
}

func printSummaries(summaries []model.ScanSummary, elapsed time.Duration) {
	if len(summaries) == 0 {
		return
	}

	fmt.Println()
	fmt.Println("Scan Summary:")
	var candidates, found, reported int
	for _, s := range summaries {
		fmt.Printf("  %-14s %4d candidates  %4d matched  %4d reported  (%s)\n",
			s.Provider, s.Candidates, s.Found, s.Reported, s.Elapsed.Round(time.Millisecond))
		candidates += s.Candidates
		found += s.Found
		reported += s.Reported
	}
	fmt.Printf("  %-14s %4d candidates  %4d matched  %4d reported  (%s)\n",
		"total", candidates, found, reported, elapsed.Round(time.Millisecond))
}

// printSink prints matches to stdout instead of posting them.
type printSink struct{}

func (p *printSink) Send(ctx context.Context, records []model.HostRecord) (int, error) {
	for _, rec := range records {
		host := rec.Domain
		if host == "" {
			host = rec.IP
		}
		fmt.Printf("  %-40s %-16s %-12s %-3s %d\n",
			host, rec.IP, rec.Provider, rec.Country, rec.StatusCode)
	}
	return len(records), nil
}
