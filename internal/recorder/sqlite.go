package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"StockForecaster/internal/model"
)

const dateLayout = "2006-01-02"

// SQLiteRecorder persists forecast runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			run_id        TEXT PRIMARY KEY,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			status        TEXT NOT NULL,
			error         TEXT,
			settings      TEXT,
			row_count     INTEGER,
			train_len     INTEGER,
			train_pairs   INTEGER,
			data_end      TEXT,
			final_loss    REAL,
			rmse          REAL,
			mae           REAL,
			mse           REAL,
			r2            REAL,
			mape          REAL,
			training_ms   INTEGER,
			duration_ms   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON forecast_runs(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS forecast_points (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL REFERENCES forecast_runs(run_id),
			step    INTEGER NOT NULL,
			date    TEXT NOT NULL,
			price   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_run ON forecast_points(run_id)`,

		`CREATE TABLE IF NOT EXISTS test_predictions (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL REFERENCES forecast_runs(run_id),
			date      TEXT NOT NULL,
			actual    REAL,
			predicted REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_run ON test_predictions(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// finite maps NaN and infinities to NULL.
func finite(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func (r *SQLiteRecorder) RecordRun(res *model.ForecastResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := json.Marshal(res.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	finalLoss := math.NaN()
	if n := len(res.EpochLoss); n > 0 {
		finalLoss = res.EpochLoss[n-1]
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	m := res.Metrics
	if _, err := tx.Exec(`INSERT INTO forecast_runs
		(run_id, timestamp, symbol, status, settings, row_count, train_len, train_pairs, data_end,
		 final_loss, rmse, mae, mse, r2, mape, training_ms, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		res.RunID, res.StartedAt.Unix(), res.Symbol, "ok", string(settings),
		res.Rows, res.TrainLen, res.TrainPairs, res.DataEnd.Format(dateLayout),
		finite(finalLoss), finite(m.RMSE), finite(m.MAE), finite(m.MSE), finite(m.R2), finite(m.MAPE),
		res.TrainingTime.Milliseconds(), res.Duration.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, p := range res.Forecast {
		if _, err := tx.Exec(`INSERT INTO forecast_points (run_id, step, date, price) VALUES (?,?,?,?)`,
			res.RunID, i+1, p.Date.Format(dateLayout), finite(p.Price)); err != nil {
			return fmt.Errorf("insert forecast point: %w", err)
		}
	}
	for _, p := range res.Predictions {
		if _, err := tx.Exec(`INSERT INTO test_predictions (run_id, date, actual, predicted) VALUES (?,?,?,?)`,
			res.RunID, p.Date.Format(dateLayout), finite(p.Actual), finite(p.Predicted)); err != nil {
			return fmt.Errorf("insert test prediction: %w", err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordFailure(f *Failure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := json.Marshal(f.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	at := f.At
	if at.IsZero() {
		at = time.Now()
	}
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	_, err = r.db.Exec(`INSERT INTO forecast_runs (run_id, timestamp, symbol, status, error, settings)
		VALUES (?,?,?,?,?,?)`,
		uuid.NewString(), at.Unix(), f.Symbol, "failed", msg, string(settings),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
