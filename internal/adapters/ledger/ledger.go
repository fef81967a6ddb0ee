// Package ledger records training runs in a SQLite database.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // database/sql driver

	"github.com/okian/litterpredict/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS training_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    target TEXT NOT NULL,
    source TEXT NOT NULL,
    rows INTEGER NOT NULL,
    estimators INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    holdout_rows INTEGER DEFAULT 0,
    r2 REAL,
    mae REAL,
    rmse REAL,
    artifact TEXT NOT NULL,
    trained_at DATETIME NOT NULL,
    UNIQUE(run_id, target)
);
CREATE INDEX IF NOT EXISTS idx_training_runs_trained_at ON training_runs(trained_at);
`

// Entry is one target of one training run. Scores are nil when the run had
// no holdout evaluation.
type Entry struct {
	RunID       string
	Target      string
	Source      string
	Rows        int
	Estimators  int
	Seed        int64
	HoldoutRows int
	R2          *float64
	MAE         *float64
	RMSE        *float64
	Artifact    string
	TrainedAt   time.Time
}

// Ledger is a SQLite-backed run history.
type Ledger struct {
	db     *sql.DB
	path   string
	logger logger.Logger
}

// Open opens or creates the ledger at path.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if path == "" {
		return nil, ErrDisabled
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}
	return &Ledger{db: db, path: path, logger: logger.Get().Named("ledger")}, nil
}

// Path returns the database file.
func (l *Ledger) Path() string { return l.path }

// Record inserts all entries of a run in one transaction.
func (l *Ledger) Record(ctx context.Context, entries []Entry) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
        INSERT OR REPLACE INTO training_runs
            (run_id, target, source, rows, estimators, seed, holdout_rows, r2, mae, rmse, artifact, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx, e.RunID, e.Target, e.Source, e.Rows, e.Estimators, e.Seed,
			e.HoldoutRows, nullable(e.R2), nullable(e.MAE), nullable(e.RMSE), e.Artifact, e.TrainedAt.UTC())
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s/%s: %w", e.RunID, e.Target, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	l.logger.Debug(ctx, "training run recorded", logger.Int("entries", len(entries)))
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	rows, err := l.db.QueryContext(ctx, `
        SELECT run_id, target, source, rows, estimators, seed, holdout_rows, r2, mae, rmse, artifact, trained_at
        FROM training_runs
        ORDER BY trained_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var (
			e            Entry
			r2, mae, rms sql.NullFloat64
		)
		if err := rows.Scan(&e.RunID, &e.Target, &e.Source, &e.Rows, &e.Estimators, &e.Seed,
			&e.HoldoutRows, &r2, &mae, &rms, &e.Artifact, &e.TrainedAt); err != nil {
			return nil, err
		}
		e.R2, e.MAE, e.RMSE = ptr(r2), ptr(mae), ptr(rms)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
