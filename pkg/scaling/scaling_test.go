package scaling

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/qcserestipy/pibench/pkg/leibniz"
)

func deterministicSweep(t *testing.T, maxWorkers int) []leibniz.Result {
	t.Helper()
	results, err := Sweep(context.Background(), maxWorkers,
		leibniz.WithChunkSize(100),
		leibniz.WithMaxBatches(2),
	)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	return results
}

func TestSweepOneResultPerWorkerCount(t *testing.T) {
	results := deterministicSweep(t, 4)
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, r := range results {
		workers := i + 1
		if r.Workers != workers {
			t.Errorf("results[%d].Workers = %d, want %d", i, r.Workers, workers)
		}
		if want := int64(workers) * 100 * 2; r.Iterations != want {
			t.Errorf("workers=%d: Iterations = %d, want %d", workers, r.Iterations, want)
		}
	}
}

func TestSweepRejectsInvalidMaxWorkers(t *testing.T) {
	if _, err := Sweep(context.Background(), 0); !errors.Is(err, leibniz.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
	}
}

func TestSweepPropagatesRunErrors(t *testing.T) {
	_, err := Sweep(context.Background(), 3, leibniz.WithChunkSize(-1))
	if !errors.Is(err, leibniz.ErrInvalidConfiguration) {
		t.Fatalf("err = %v, want wrapped ErrInvalidConfiguration", err)
	}
}

func TestWriteTable(t *testing.T) {
	var buf strings.Builder
	if err := WriteTable(&buf, deterministicSweep(t, 3)); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header plus 3 rows:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Workers") || !strings.Contains(lines[0], "Iterations") {
		t.Errorf("missing header: %q", lines[0])
	}
	if !strings.Contains(lines[3], "600") {
		t.Errorf("last row should report 600 iterations for 3 workers: %q", lines[3])
	}
}

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	if err := WriteCSV(&buf, deterministicSweep(t, 2)); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), buf.String())
	}
	if lines[0] != "workers,iterations,pi" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,200,") || !strings.HasPrefix(lines[2], "2,400,") {
		t.Errorf("unexpected rows: %q, %q", lines[1], lines[2])
	}
}
