// Package engine runs the discovery pipeline: it drains a candidate
// source per provider, fans probing out over a bounded worker pool,
// classifies and filters the results, and hands them to the batch
// reporter once the pool has drained.
package engine

import (
	"context"
	"time"

	"github.com/user/cloudscope/internal/classify"
	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/report"
	"github.com/user/cloudscope/internal/source"
	"github.com/user/cloudscope/internal/util"
)

// Resolver maps a domain to an address.
type Resolver interface {
	Resolve(ctx context.Context, domain string) (string, bool)
}

// Locator maps an address to a country code.
type Locator interface {
	Country(ctx context.Context, ip string) (string, bool)
}

// Prober issues a network probe against one candidate.
type Prober interface {
	Candidate(ctx context.Context, c model.Candidate) model.ProbeOutcome
}

// Options tune one scan run.
type Options struct {
	// TargetCountry is the uppercase country code the scan is after.
	TargetCountry string

	// FilterCountry drops results whose resolved country does not
	// match TargetCountry. When false the country only labels results.
	FilterCountry bool

	// KeepUnreachable retains candidates whose HTTP probe failed,
	// reporting them with status 0 and their DNS/geo evidence. When
	// false such candidates are dropped outright.
	KeepUnreachable bool

	// Workers bounds probing concurrency.
	Workers int

	// ProbeTimeout bounds each candidate's probe.
	ProbeTimeout time.Duration

	// BatchSize and FlushDelay configure the reporter.
	BatchSize  int
	FlushDelay time.Duration

	// ProviderDelay is the courtesy pause between providers.
	ProviderDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 20
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 5 * time.Second
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	return o
}

// Engine wires the pipeline stages together for one run.
type Engine struct {
	opts       Options
	src        source.Source
	registry   *provider.Registry
	classifier *classify.Classifier
	resolver   Resolver
	locator    Locator
	prober     Prober
	sink       report.Sink
}

// New creates an engine. The resolver must be freshly constructed for
// the run: its DNS cache is meant to live and die with it.
func New(opts Options, src source.Source, reg *provider.Registry, resolver Resolver, locator Locator, prober Prober, sink report.Sink) *Engine {
	return &Engine{
		opts:       opts.withDefaults(),
		src:        src,
		registry:   reg,
		classifier: classify.New(reg),
		resolver:   resolver,
		locator:    locator,
		prober:     prober,
		sink:       sink,
	}
}

// Run scans every provider in registry order and returns per-provider
// summaries. Individual candidate failures never abort the run.
func (e *Engine) Run(ctx context.Context) ([]model.ScanSummary, error) {
	return e.run(ctx, e.registry.All())
}

// RunProvider scans a single provider by key.
func (e *Engine) RunProvider(ctx context.Context, key string) ([]model.ScanSummary, error) {
	prov, ok := e.registry.Get(key)
	if !ok {
		return nil, &UnknownProviderError{Key: key}
	}
	return e.run(ctx, []provider.Provider{prov})
}

func (e *Engine) run(ctx context.Context, providers []provider.Provider) ([]model.ScanSummary, error) {
	summaries := make([]model.ScanSummary, 0, len(providers))

	for i, prov := range providers {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}

		summary := e.scanProvider(ctx, prov)
		summaries = append(summaries, summary)

		util.Info("%s %s: %d candidates, %d classified, %d reported",
			prov.Icon, prov.Name, summary.Candidates, summary.Found, summary.Reported)

		if e.opts.ProviderDelay > 0 && i < len(providers)-1 {
			select {
			case <-time.After(e.opts.ProviderDelay):
			case <-ctx.Done():
				return summaries, ctx.Err()
			}
		}
	}
	return summaries, nil
}

// scanProvider runs the full pipeline for one provider: candidates are
// materialized up front, probing completes and the pool is joined
// before the first batch is reported.
func (e *Engine) scanProvider(ctx context.Context, prov provider.Provider) model.ScanSummary {
	start := time.Now()
	summary := model.ScanSummary{Provider: prov.Key}

	candidates, err := e.src.Produce(ctx, e.opts.TargetCountry, prov)
	if err != nil {
		util.Warn("discovery for %s failed: %v", prov.Key, err)
		summary.Elapsed = time.Since(start)
		return summary
	}
	summary.Candidates = len(candidates)
	if len(candidates) == 0 {
		summary.Elapsed = time.Since(start)
		return summary
	}

	util.Debug("probing %d candidates for %s with %d workers",
		len(candidates), prov.Key, e.opts.Workers)

	results := e.probeAll(ctx, candidates, prov)
	summary.Found = len(results)

	reporter := report.NewReporter(e.sink, e.opts.BatchSize, e.opts.FlushDelay)
	for _, rec := range results {
		reporter.Add(ctx, rec)
	}
	reporter.Flush(ctx)
	summary.Reported = reporter.Reported()

	summary.Elapsed = time.Since(start)
	return summary
}

// probeAll fans candidates out over the worker pool and collects the
// classified results in completion order.
func (e *Engine) probeAll(ctx context.Context, candidates []model.Candidate, prov provider.Provider) []model.HostRecord {
	jobs := make(chan model.Candidate, len(candidates))
	results := make(chan model.HostRecord, len(candidates))

	done := make(chan struct{})
	for i := 0; i < e.opts.Workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for c := range jobs {
				if rec, ok := e.checkCandidate(ctx, c, prov); ok {
					results <- rec
				}
			}
		}()
	}

	for _, c := range candidates {
		jobs <- c
	}
	close(jobs)

	go func() {
		for i := 0; i < e.opts.Workers; i++ {
			<-done
		}
		close(results)
	}()

	var records []model.HostRecord
	for rec := range results {
		util.Debug("classified %s as %s (%s)", rec.IP, rec.Provider, rec.Country)
		records = append(records, rec)
	}
	return records
}

// checkCandidate runs the per-candidate chain:
// resolve -> geolocate -> country filter -> probe -> classify.
// Failure at any stage yields no record; there is no retry.
func (e *Engine) checkCandidate(ctx context.Context, c model.Candidate, prov provider.Provider) (model.HostRecord, bool) {
	var ip, domain string
	if c.IsIP() {
		ip = c.Value
	} else {
		domain = c.Value
		resolved, ok := e.resolver.Resolve(ctx, domain)
		if !ok {
			return model.HostRecord{}, false
		}
		ip = resolved
	}

	country, located := e.locator.Country(ctx, ip)
	if e.opts.FilterCountry {
		if !located || country != e.opts.TargetCountry {
			return model.HostRecord{}, false
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, e.opts.ProbeTimeout)
	outcome := e.prober.Candidate(probeCtx, c)
	cancel()

	if !outcome.Reachable && !e.opts.KeepUnreachable {
		return model.HostRecord{}, false
	}

	key, matched := e.classifier.Classify(outcome, c)
	if !matched {
		return model.HostRecord{}, false
	}

	return model.HostRecord{
		IP:         ip,
		Domain:     domain,
		Provider:   key,
		Country:    country,
		Headers:    outcome.Headers,
		StatusCode: outcome.StatusCode,
		Title:      outcome.Title,
	}, true
}

// UnknownProviderError reports a scan request for a key that is not in
// the registry.
type UnknownProviderError struct {
	Key string
}

func (e *UnknownProviderError) Error() string {
	return "unknown provider: " + e.Key
}
