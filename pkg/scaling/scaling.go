// Package scaling measures how much Gregory-Leibniz work a time-bounded
// run completes as the worker count grows, and renders the observations
// for reporting and plotting.
package scaling

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qcserestipy/pibench/pkg/leibniz"
)

// Sweep runs the accumulator once per worker count from 1 through
// maxWorkers and returns the results in worker-count order. The first
// failing run aborts the sweep.
func Sweep(ctx context.Context, maxWorkers int, opts ...leibniz.Option) ([]leibniz.Result, error) {
	if maxWorkers < 1 {
		return nil, fmt.Errorf("%w: max workers must be >= 1, got %d", leibniz.ErrInvalidConfiguration, maxWorkers)
	}

	acc := leibniz.New(opts...)
	results := make([]leibniz.Result, 0, maxWorkers)
	for workers := 1; workers <= maxWorkers; workers++ {
		start := time.Now()
		res, err := acc.Run(ctx, workers)
		if err != nil {
			return nil, fmt.Errorf("workers=%d: %w", workers, err)
		}
		logrus.WithFields(logrus.Fields{
			"workers":    res.Workers,
			"iterations": res.Iterations,
			"pi":         fmt.Sprintf("%.10f", res.Pi),
			"duration":   time.Since(start),
		}).Info("Sweep step completed")
		results = append(results, res)
	}
	return results, nil
}

// WriteTable renders the sweep results as an aligned text table.
func WriteTable(w io.Writer, results []leibniz.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintln(tw, "Workers\tIterations\tPi\t"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(tw, "%d\t%d\t%.10f\t\n", r.Workers, r.Iterations, r.Pi); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteCSV emits one (workers, iterations, pi) row per result, the form
// consumed by external plotting of iterations against worker count.
func WriteCSV(w io.Writer, results []leibniz.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"workers", "iterations", "pi"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Workers),
			strconv.FormatInt(r.Iterations, 10),
			strconv.FormatFloat(r.Pi, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
