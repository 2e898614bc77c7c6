package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder appends evaluations and trades to a SQLite database.
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

	// WAL so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			interval      TEXT,
			bars          INTEGER,
			ready         INTEGER,
			current_price TEXT,
			range_pos     TEXT,
			fast_ma       TEXT,
			slow_ma       TEXT,
			window_high   TEXT,
			window_low    TEXT,
			buy_level     TEXT,
			sell_level    TEXT,
			signal        TEXT,
			position      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			side          TEXT,
			quantity      TEXT,
			price         TEXT,
			executor      TEXT,
			position_from TEXT,
			position_to   TEXT,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,

		`CREATE TABLE IF NOT EXISTS position_resets (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			position  TEXT,
			open_secs INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resets_ts ON position_resets(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordEvaluation stores decimals as TEXT to keep exact exchange precision.
func (r *SQLiteRecorder) RecordEvaluation(rec *EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := rec.Analysis
	_, err := r.db.Exec(`INSERT INTO evaluations
		(timestamp, symbol, interval, bars, ready, current_price, range_pos, fast_ma, slow_ma,
		 window_high, window_low, buy_level, sell_level, signal, position)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.At.Unix(), rec.Symbol, rec.Interval, a.Bars, a.Ready,
		a.CurrentPrice.String(), a.RangePos.String(), a.FastMA.String(), a.SlowMA.String(),
		a.Fib.High.String(), a.Fib.Low.String(), a.BuyLevel.String(), a.SellLevel.String(),
		a.Signal.String(), rec.Position.String(),
	)
	return err
}

func (r *SQLiteRecorder) RecordTrade(rec *TradeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO trades
		(timestamp, symbol, side, quantity, price, executor, position_from, position_to, error)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		rec.At.Unix(), rec.Symbol, rec.Side, rec.Quantity, rec.Price, rec.Executor,
		rec.From.String(), rec.To.String(), rec.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordReset(rec *ResetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO position_resets
		(timestamp, symbol, position, open_secs)
		VALUES (?,?,?,?)`,
		rec.At.Unix(), rec.Symbol, rec.Position.String(), int64(rec.OpenFor.Seconds()),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
