// Package leibniz approximates π by summing the Gregory-Leibniz series
// across a fixed worker pool under a wall-clock budget. The unit of work
// is a ChunkRange of series indices; each batch dispatches exactly one
// chunk per worker and folds the partial sums after a barrier, so the
// iteration count is always a whole number of batches.
package leibniz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qcserestipy/pibench/pkg/series"
	"github.com/qcserestipy/pibench/pkg/workerpool"
)

// ErrInvalidConfiguration is returned by Run when its parameters cannot
// describe a valid computation. No work is performed in that case.
var ErrInvalidConfiguration = errors.New("invalid configuration")

const (
	DefaultTimeLimit = 60 * time.Second
	DefaultChunkSize = int64(1_000_000)
)

// ChunkRange is a half-open range [Start, End) of series indices
// assigned to one worker for one batch. Ranges issued over the lifetime
// of a run are contiguous, strictly increasing and never overlap, so no
// index is summed twice.
type ChunkRange struct {
	Start int64
	End   int64
}

// Result reports what one run accomplished within its time budget.
type Result struct {
	Workers    int     `json:"workers"`
	Iterations int64   `json:"iterations"`
	Pi         float64 `json:"pi"`
}

type Options struct {
	TimeLimit  time.Duration
	ChunkSize  int64
	MaxBatches int
}

type Option func(*Options)

func defaultOpts() Options {
	return Options{
		TimeLimit: DefaultTimeLimit,
		ChunkSize: DefaultChunkSize,
	}
}

// WithTimeLimit sets the wall-clock budget for a run.
func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) {
		o.TimeLimit = d
	}
}

// WithChunkSize sets the number of series indices per chunk.
func WithChunkSize(n int64) Option {
	return func(o *Options) {
		o.ChunkSize = n
	}
}

// WithMaxBatches caps the number of batches a run completes. Zero means
// no cap; the run is then bounded by the time limit alone. A positive
// cap makes the amount of work, and therefore the estimate, fully
// deterministic.
func WithMaxBatches(n int) Option {
	return func(o *Options) {
		o.MaxBatches = n
	}
}

// Accumulator runs time-bounded parallel summations of the series. An
// Accumulator holds only configuration; all state of a summation is
// local to one Run call, so a single Accumulator may serve concurrent
// Run calls with different worker counts.
type Accumulator struct {
	opts Options
	now  func() time.Time
}

// New creates an Accumulator with optional configuration.
func New(opts ...Option) *Accumulator {
	o := defaultOpts()
	for _, fn := range opts {
		fn(&o)
	}
	return &Accumulator{opts: o, now: time.Now}
}

// Run sums series chunks on a pool of exactly workers goroutines until
// the time limit elapses, and returns the total number of series indices
// summed together with the resulting π estimate.
//
// The deadline is checked only after a batch has fully resolved: any
// positive time limit yields at least one complete batch, and a run may
// overshoot the limit by the duration of one in-flight batch. Iterations
// is always an exact multiple of chunkSize*workers. A failed chunk
// evaluation or a canceled context aborts the run with an error and no
// partial result.
func (a *Accumulator) Run(ctx context.Context, workers int) (Result, error) {
	if workers < 1 {
		return Result{}, fmt.Errorf("%w: workers must be >= 1, got %d", ErrInvalidConfiguration, workers)
	}
	if a.opts.ChunkSize <= 0 {
		return Result{}, fmt.Errorf("%w: chunk size must be > 0, got %d", ErrInvalidConfiguration, a.opts.ChunkSize)
	}
	if a.opts.TimeLimit <= 0 {
		return Result{}, fmt.Errorf("%w: time limit must be > 0, got %v", ErrInvalidConfiguration, a.opts.TimeLimit)
	}
	if a.opts.MaxBatches < 0 {
		return Result{}, fmt.Errorf("%w: max batches must be >= 0, got %d", ErrInvalidConfiguration, a.opts.MaxBatches)
	}

	pool := workerpool.New[ChunkRange, float64](workerpool.WithWorkers(workers))
	session := pool.Open(ctx, func(_ context.Context, r ChunkRange) (float64, error) {
		return series.Sum(r.Start, r.End), nil
	})
	defer session.Close()

	chunk := a.opts.ChunkSize
	batch := make([]ChunkRange, workers)

	var (
		nextIndex  int64
		runningSum float64
		iterations int64
	)

	start := a.now()
	for completed := 0; ; {
		for k := range batch {
			batch[k] = ChunkRange{
				Start: nextIndex + int64(k)*chunk,
				End:   nextIndex + int64(k+1)*chunk,
			}
		}
		nextIndex += int64(workers) * chunk

		partials, err := session.Map(batch)
		if err != nil {
			return Result{}, fmt.Errorf("batch %d: %w", completed, err)
		}
		for _, p := range partials {
			runningSum += p
		}
		iterations += chunk * int64(workers)
		completed++

		if a.opts.MaxBatches > 0 && completed >= a.opts.MaxBatches {
			break
		}
		if a.now().Sub(start) >= a.opts.TimeLimit {
			break
		}
	}

	res := Result{
		Workers:    workers,
		Iterations: iterations,
		Pi:         4 * runningSum,
	}
	logrus.WithFields(logrus.Fields{
		"workers":    res.Workers,
		"iterations": res.Iterations,
		"pi":         res.Pi,
		"duration":   a.now().Sub(start),
	}).Debug("Run completed")
	return res, nil
}
