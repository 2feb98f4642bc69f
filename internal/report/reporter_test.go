package report

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cloudscope/internal/model"
)

// recordingSink remembers the size of every batch it receives.
type recordingSink struct {
	batches []int
	failOn  int
	err     error
}

func (s *recordingSink) Send(ctx context.Context, records []model.HostRecord) (int, error) {
	s.batches = append(s.batches, len(records))
	if s.failOn > 0 && len(s.batches) == s.failOn {
		return 0, s.err
	}
	return len(records), nil
}

func makeRecords(n int) []model.HostRecord {
	out := make([]model.HostRecord, n)
	for i := range out {
		out[i] = model.HostRecord{
			IP:       fmt.Sprintf("203.0.113.%d", i%250),
			Domain:   fmt.Sprintf("app%d.herokuapp.com", i),
			Provider: "heroku",
		}
	}
	return out
}

func TestReporterBatchesExactly(t *testing.T) {
	sink := &recordingSink{}
	r := NewReporter(sink, 50, 0)

	ctx := context.Background()
	for _, rec := range makeRecords(120) {
		r.Add(ctx, rec)
	}
	r.Flush(ctx)

	assert.Equal(t, []int{50, 50, 20}, sink.batches)
	assert.Equal(t, 3, r.Flushes())
	assert.Equal(t, 120, r.Reported())
}

func TestReporterNeverSendsOversizedBatch(t *testing.T) {
	sink := &recordingSink{}
	r := NewReporter(sink, 10, 0)

	ctx := context.Background()
	for _, rec := range makeRecords(95) {
		r.Add(ctx, rec)
	}
	r.Flush(ctx)

	for _, size := range sink.batches {
		assert.LessOrEqual(t, size, 10)
	}
	assert.Equal(t, 10, r.Flushes())
}

func TestReporterEmptyRemainderMakesNoCall(t *testing.T) {
	sink := &recordingSink{}
	r := NewReporter(sink, 50, 0)

	ctx := context.Background()
	for _, rec := range makeRecords(100) {
		r.Add(ctx, rec)
	}
	r.Flush(ctx)

	assert.Equal(t, []int{50, 50}, sink.batches)
	assert.Equal(t, 2, r.Flushes())
}

func TestReporterNothingToReport(t *testing.T) {
	sink := &recordingSink{}
	r := NewReporter(sink, 50, 0)

	r.Flush(context.Background())

	assert.Empty(t, sink.batches)
	assert.Zero(t, r.Flushes())
	assert.Zero(t, r.Reported())
}

func TestReporterDropsFailedBatchAndContinues(t *testing.T) {
	sink := &recordingSink{failOn: 2, err: errors.New("invalid API key")}
	r := NewReporter(sink, 50, 0)

	ctx := context.Background()
	for _, rec := range makeRecords(150) {
		r.Add(ctx, rec)
	}
	r.Flush(ctx)

	// All three batches go out; only the failed one is lost.
	require.Equal(t, []int{50, 50, 50}, sink.batches)
	assert.Equal(t, 100, r.Reported())
}
