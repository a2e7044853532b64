package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qcserestipy/pibench/pkg/leibniz"
	"github.com/qcserestipy/pibench/pkg/results"
	"github.com/qcserestipy/pibench/pkg/scaling"
)

func init() {
	formatter := &logrus.TextFormatter{}
	formatter.FullTimestamp = true
	formatter.TimestampFormat = time.RFC3339
	logrus.SetLevel(logrus.InfoLevel)
	logrus.SetFormatter(formatter)
}

func main() {
	maxWorkersPtr := flag.Int("max-workers", 20, "Largest worker count in the sweep")
	timeLimitPtr := flag.Duration("time-limit", leibniz.DefaultTimeLimit, "Wall-clock budget per worker count")
	chunkSizePtr := flag.Int64("chunk-size", leibniz.DefaultChunkSize, "Series indices per chunk")
	maxBatchesPtr := flag.Int("max-batches", 0, "Batch cap per run (0 = time limit only)")
	csvPtr := flag.String("csv", "", "Write (workers, iterations, pi) rows to this file for plotting")
	dbPtr := flag.Bool("db", false, "Record the sweep to Postgres (PIBENCH_DB_* env)")
	labelPtr := flag.String("label", "", "Run label for the database record (default: start timestamp)")
	flag.Parse()

	logrus.WithFields(logrus.Fields{
		"max_workers": *maxWorkersPtr,
		"time_limit":  *timeLimitPtr,
		"chunk_size":  *chunkSizePtr,
		"max_batches": *maxBatchesPtr,
	}).Info("Starting Gregory-Leibniz scaling sweep")

	start := time.Now()
	sweep, err := scaling.Sweep(context.Background(), *maxWorkersPtr,
		leibniz.WithTimeLimit(*timeLimitPtr),
		leibniz.WithChunkSize(*chunkSizePtr),
		leibniz.WithMaxBatches(*maxBatchesPtr),
	)
	if err != nil {
		logrus.Fatalf("Sweep failed: %v", err)
	}
	logrus.Infof("Sweep completed in %s", time.Since(start))

	if err := scaling.WriteTable(os.Stdout, sweep); err != nil {
		logrus.Fatalf("Writing table failed: %v", err)
	}

	if *csvPtr != "" {
		f, err := os.Create(*csvPtr)
		if err != nil {
			logrus.Fatalf("Creating %s failed: %v", *csvPtr, err)
		}
		if err := scaling.WriteCSV(f, sweep); err != nil {
			f.Close()
			logrus.Fatalf("Writing CSV failed: %v", err)
		}
		if err := f.Close(); err != nil {
			logrus.Fatalf("Closing %s failed: %v", *csvPtr, err)
		}
		logrus.Infof("Results written to %s", *csvPtr)
	}

	if *dbPtr {
		label := *labelPtr
		if label == "" {
			label = start.UTC().Format(time.RFC3339)
		}
		recordSweep(label, sweep)
	}
}

func recordSweep(label string, sweep []leibniz.Result) {
	db, err := results.Open(results.LoadPostgresConfig())
	if err != nil {
		logrus.Fatalf("Connecting to Postgres failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec := results.NewRecorder(db)
	if err := rec.EnsureSchema(ctx); err != nil {
		logrus.Fatalf("Ensuring schema failed: %v", err)
	}
	if err := rec.Record(ctx, label, sweep); err != nil {
		logrus.Fatalf("Recording sweep failed: %v", err)
	}
	logrus.Infof("Sweep recorded under label %q", label)
}
