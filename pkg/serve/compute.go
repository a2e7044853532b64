package serve

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/qcserestipy/pibench/pkg/leibniz"
	"github.com/qcserestipy/pibench/pkg/scaling"
)

// ComputeRequest describes one accumulator run. Zero-valued tunables
// fall back to the accumulator defaults (60 s limit, 1e6 chunk).
type ComputeRequest struct {
	Workers          int     `json:"workers"`
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	ChunkSize        int64   `json:"chunk_size"`
	MaxBatches       int     `json:"max_batches"`
}

// SweepRequest describes a scaling sweep over worker counts
// 1..MaxWorkers, every run sharing the same tunables.
type SweepRequest struct {
	MaxWorkers       int     `json:"max_workers"`
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	ChunkSize        int64   `json:"chunk_size"`
	MaxBatches       int     `json:"max_batches"`
}

func runOptions(timeLimitSeconds float64, chunkSize int64, maxBatches int) []leibniz.Option {
	var opts []leibniz.Option
	if timeLimitSeconds != 0 {
		opts = append(opts, leibniz.WithTimeLimit(time.Duration(timeLimitSeconds*float64(time.Second))))
	}
	if chunkSize != 0 {
		opts = append(opts, leibniz.WithChunkSize(chunkSize))
	}
	if maxBatches != 0 {
		opts = append(opts, leibniz.WithMaxBatches(maxBatches))
	}
	return opts
}

func (s *Server) checkCap(workers int) error {
	if s.workersCap > 0 && workers > s.workersCap {
		return fmt.Errorf("%w: %d workers exceeds server cap of %d",
			leibniz.ErrInvalidConfiguration, workers, s.workersCap)
	}
	return nil
}

func (s *Server) routes() {
	s.Router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	CreateRoute(s.Router, "/compute",
		func(ctx context.Context, req ComputeRequest) (leibniz.Result, error) {
			if err := s.checkCap(req.Workers); err != nil {
				return leibniz.Result{}, err
			}
			acc := leibniz.New(runOptions(req.TimeLimitSeconds, req.ChunkSize, req.MaxBatches)...)
			return acc.Run(ctx, req.Workers)
		},
	)

	CreateRoute(s.Router, "/sweep",
		func(ctx context.Context, req SweepRequest) ([]leibniz.Result, error) {
			if err := s.checkCap(req.MaxWorkers); err != nil {
				return nil, err
			}
			return scaling.Sweep(ctx, req.MaxWorkers,
				runOptions(req.TimeLimitSeconds, req.ChunkSize, req.MaxBatches)...)
		},
	)
}
