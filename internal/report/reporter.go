// Package report delivers classified results to the collector in
// rate-limited, fixed-size batches.
package report

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/util"
)

// Sink accepts one batch of host records and returns how many were
// newly admitted after identity dedup on (ip, domain).
type Sink interface {
	Send(ctx context.Context, records []model.HostRecord) (added int, err error)
}

// Reporter accumulates records for the current provider and flushes
// them through the sink in batches. Flushes are fire-and-forget: a
// failed batch is logged and discarded, never retried, so a broken
// collector cannot stall or abort a run.
type Reporter struct {
	sink      Sink
	batchSize int
	limiter   *rate.Limiter

	pending  []model.HostRecord
	flushes  int
	reported int
}

// NewReporter creates a reporter. flushDelay is the fixed courtesy
// pause between successive batch flushes; zero disables pacing.
func NewReporter(sink Sink, batchSize int, flushDelay time.Duration) *Reporter {
	if batchSize <= 0 {
		batchSize = 50
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if flushDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(flushDelay), 1)
	}

	return &Reporter{
		sink:      sink,
		batchSize: batchSize,
		limiter:   limiter,
	}
}

// Add queues one record, flushing when a full batch has accumulated.
func (r *Reporter) Add(ctx context.Context, record model.HostRecord) {
	r.pending = append(r.pending, record)
	if len(r.pending) >= r.batchSize {
		r.flush(ctx)
	}
}

// Flush sends any remainder. Call exactly once at end-of-provider; an
// empty remainder makes no network call.
func (r *Reporter) Flush(ctx context.Context) {
	if len(r.pending) == 0 {
		return
	}
	r.flush(ctx)
}

// Flushes returns how many batch calls have been made.
func (r *Reporter) Flushes() int { return r.flushes }

// Reported returns how many records the sink admitted.
func (r *Reporter) Reported() int { return r.reported }

func (r *Reporter) flush(ctx context.Context) {
	batch := r.pending
	r.pending = nil

	if err := r.limiter.Wait(ctx); err != nil {
		util.Warn("batch pacing interrupted: %v", err)
		return
	}

	r.flushes++
	added, err := r.sink.Send(ctx, batch)
	if err != nil {
		util.Warn("dropping batch of %d results: %v", len(batch), err)
		return
	}

	r.reported += added
	util.Info("reported batch of %d results (%d new)", len(batch), added)
}
