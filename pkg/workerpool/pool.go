// Package workerpool provides a generic WorkerPoolExecutor that runs
// arbitrary fallible functions concurrently, either one-shot over a slice
// of inputs or as a long-lived session that accepts repeated batches.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

type PoolOptions struct {
	NumWorkers int
}

type PoolOptionFunc func(*PoolOptions)

func defaultOpts() PoolOptions {
	return PoolOptions{
		NumWorkers: runtime.NumCPU(),
	}
}

// WithWorkers allows customization of the number of concurrent workers.
func WithWorkers(num int) PoolOptionFunc {
	return func(opts *PoolOptions) {
		opts.NumWorkers = num
	}
}

// WorkerPoolExecutor manages a pool of goroutines to execute tasks.
// T is the input type, R is the output type. Task functions return an
// error; the first task error aborts the whole computation, since a
// failed task's result cannot be recovered by the caller.
type WorkerPoolExecutor[T any, R any] struct {
	PoolOptions
}

// New creates a new WorkerPoolExecutor with optional configuration.
func New[T any, R any](opts ...PoolOptionFunc) *WorkerPoolExecutor[T, R] {
	o := defaultOpts()
	for _, fn := range opts {
		fn(&o)
	}
	return &WorkerPoolExecutor[T, R]{PoolOptions: o}
}

type task[T any, R any] struct {
	idx   int
	input T
	out   chan<- result[R]
}

type result[R any] struct {
	idx    int
	output R
	err    error
}

// Run executes fn on each input using a pool of NumWorkers workers
// started for this call. It returns the results in the same order as
// inputs, or the first error encountered (by input order) if any task
// failed or the context was canceled.
func (w *WorkerPoolExecutor[T, R]) Run(ctx context.Context, inputs []T, fn func(ctx context.Context, t T) (R, error)) ([]R, error) {
	s := w.Open(ctx, fn)
	defer s.Close()
	return s.Map(inputs)
}

// Session is a set of exactly NumWorkers goroutines that stays alive
// across repeated Map calls, so callers dispatching many batches do not
// pay worker startup per batch. A Session is not safe for concurrent
// Map calls; Close must be called exactly once.
type Session[T any, R any] struct {
	ctx   context.Context
	tasks chan task[T, R]
	wg    sync.WaitGroup
}

// Open starts NumWorkers goroutines executing fn and returns the session
// handle. The workers exit when ctx is canceled or Close is called.
func (w *WorkerPoolExecutor[T, R]) Open(ctx context.Context, fn func(ctx context.Context, t T) (R, error)) *Session[T, R] {
	s := &Session[T, R]{
		ctx:   ctx,
		tasks: make(chan task[T, R]),
	}
	s.wg.Add(w.NumWorkers)
	for i := 0; i < w.NumWorkers; i++ {
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-s.tasks:
					if !ok {
						return
					}
					out, err := fn(ctx, t.input)
					// The reply channel is buffered for the whole batch,
					// so this send only blocks on cancellation.
					select {
					case <-ctx.Done():
						return
					case t.out <- result[R]{idx: t.idx, output: out, err: err}:
					}
				}
			}
		}()
	}
	return s
}

// Map dispatches one batch and blocks until every result has arrived or
// the context is canceled. Results are returned in input order. If any
// task returned an error, Map returns the first one by input order and
// no outputs.
func (s *Session[T, R]) Map(inputs []T) ([]R, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}
	replies := make(chan result[R], len(inputs))

	for i, input := range inputs {
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		case s.tasks <- task[T, R]{idx: i, input: input, out: replies}:
		}
	}

	outputs := make([]R, len(inputs))
	errs := make([]error, len(inputs))
	for collected := 0; collected < len(inputs); collected++ {
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()
		case r := <-replies:
			outputs[r.idx] = r.output
			errs[r.idx] = r.err
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

// Close shuts the session down and waits for all workers to exit.
func (s *Session[T, R]) Close() {
	close(s.tasks)
	s.wg.Wait()
}
