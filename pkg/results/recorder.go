// Package results stores completed scaling sweeps in Postgres so runs
// on different hosts or days can be compared. Only finished results are
// written; in-progress accumulator state is never persisted.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/qcserestipy/pibench/pkg/leibniz"
)

// Open connects to Postgres with sane pool limits and verifies the
// connection with a short ping.
func Open(cfg PostgresConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	return db, nil
}

type Recorder struct {
	db *sql.DB
}

func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// EnsureSchema creates the results table if it does not exist yet.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS scaling_results (
			id          BIGSERIAL PRIMARY KEY,
			run_label   TEXT NOT NULL,
			workers     INT NOT NULL,
			iterations  BIGINT NOT NULL,
			pi          DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL
		)
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Record stores one sweep under the given label, all rows sharing a
// single timestamp, inside one transaction.
func (r *Recorder) Record(ctx context.Context, label string, sweep []leibniz.Result) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO scaling_results (run_label, workers, iterations, pi, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := time.Now()
	for _, res := range sweep {
		if _, err := tx.ExecContext(ctx, insert, label, res.Workers, res.Iterations, res.Pi, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Sweep returns the results recorded under label in worker-count order.
func (r *Recorder) Sweep(ctx context.Context, label string) ([]leibniz.Result, error) {
	query := `
		SELECT workers, iterations, pi
		FROM scaling_results
		WHERE run_label = $1
		ORDER BY workers
	`

	rows, err := r.db.QueryContext(ctx, query, label)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sweep []leibniz.Result
	for rows.Next() {
		var res leibniz.Result
		if err := rows.Scan(&res.Workers, &res.Iterations, &res.Pi); err != nil {
			return nil, err
		}
		sweep = append(sweep, res)
	}
	return sweep, rows.Err()
}
