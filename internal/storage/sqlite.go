package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteSink stores tick records in a single-table SQLite database with
// WAL mode enabled, one insert per tick.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at path and ensures the
// ticks table exists.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite sink: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS ticks (
			id INTEGER PRIMARY KEY,
			status TEXT NOT NULL,
			time TEXT NOT NULL,
			time_est TEXT NOT NULL,
			date TEXT NOT NULL,
			symbol TEXT NOT NULL,
			price TEXT NOT NULL,
			best_price TEXT NOT NULL,
			best_price_time TEXT NOT NULL,
			currency TEXT NOT NULL,
			fx_rate TEXT NOT NULL,
			low_fx TEXT NOT NULL,
			low_fx_time TEXT NOT NULL,
			value TEXT NOT NULL,
			best_value TEXT NOT NULL,
			best_value_time TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create ticks table: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Append inserts one tick row.
func (s *SQLiteSink) Append(rec TickRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO ticks (
			status, time, time_est, date, symbol,
			price, best_price, best_price_time,
			currency, fx_rate, low_fx, low_fx_time,
			value, best_value, best_value_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Status, rec.Time, rec.TimeEST, rec.Date, rec.Symbol,
		rec.Price.String(), rec.BestPrice.String(), rec.BestPriceTime,
		rec.Currency, rec.FxRate.String(), rec.LowFx.String(), rec.LowFxTime,
		rec.Value.String(), rec.BestValue.String(), rec.BestValueTime,
	)
	if err != nil {
		return fmt.Errorf("insert tick: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
