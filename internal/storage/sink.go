// Package storage persists one structured record per successful tick,
// either as CSV rows or as SQLite rows depending on the output path.
package storage

import (
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// TickRecord is the per-tick record appended to a sink. Field order is
// fixed and shared by both sink implementations. Status is "Start" for
// the baseline record of a run and "Run" afterwards.
type TickRecord struct {
	Status        string
	Time          string
	TimeEST       string
	Date          string
	Symbol        string
	Price         decimal.Decimal
	BestPrice     decimal.Decimal
	BestPriceTime string
	Currency      string
	FxRate        decimal.Decimal
	LowFx         decimal.Decimal
	LowFxTime     string
	Value         decimal.Decimal
	BestValue     decimal.Decimal
	BestValueTime string
}

// Sink appends tick records to some durable destination.
type Sink interface {
	Append(rec TickRecord) error
	Close() error
}

// Open picks a sink implementation by file extension: .db/.sqlite/
// .sqlite3 get the SQLite store, everything else is CSV.
func Open(path string) (Sink, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteSink(path)
	default:
		return NewCSVSink(path)
	}
}
