// Package source produces scan candidates from external discovery
// mechanisms. All sources share one contract: a finite, deduplicated
// candidate list per provider, capped to bound probing cost, and soft
// failure (log + return what was collected) on upstream trouble.
package source

import (
	"context"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
)

// DefaultCap bounds the candidate count per provider.
const DefaultCap = 500

// Source is a pluggable candidate discovery strategy.
type Source interface {
	// Name identifies the strategy in logs and summaries.
	Name() string

	// Produce returns up to the configured cap of unique candidates
	// for one provider in the target country. A degraded upstream
	// yields a short (possibly empty) list, not an error; only
	// misconfiguration that prevents any work is an error.
	Produce(ctx context.Context, country string, prov provider.Provider) ([]model.Candidate, error)
}

// dedupe keeps the first occurrence of each candidate value, preserving
// order, and truncates to cap.
func dedupe(candidates []model.Candidate, cap int) []model.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.Value] {
			continue
		}
		seen[c.Value] = true
		out = append(out, c)
		if cap > 0 && len(out) >= cap {
			break
		}
	}
	return out
}
