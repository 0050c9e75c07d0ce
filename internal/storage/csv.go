package storage

import (
	"encoding/csv"
	"fmt"
	"os"
)

var csvHeader = []string{
	"Status", "Time", "TimeEST", "Date", "Symbol",
	"SymbolPrice", "SymbolHigh", "SymbolHighTime",
	"Currency", "CurrencyValue", "CurrencyLow", "CurrencyLowTime",
	"Value", "BestValue", "BestValueTime",
}

// CSVSink appends tick records to a CSV file, writing the header only
// when it creates the file. Every record is flushed immediately so a
// killed run loses at most nothing.
type CSVSink struct {
	f *os.File
	w *csv.Writer
}

// NewCSVSink opens (or creates) the CSV file at path.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv sink: %w", err)
	}

	s := &CSVSink{f: f, w: csv.NewWriter(f)}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat csv sink: %w", err)
	}
	if info.Size() == 0 {
		if err := s.w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		s.w.Flush()
		if err := s.w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return s, nil
}

// Append writes one record row.
func (s *CSVSink) Append(rec TickRecord) error {
	row := []string{
		rec.Status, rec.Time, rec.TimeEST, rec.Date, rec.Symbol,
		rec.Price.String(), rec.BestPrice.String(), rec.BestPriceTime,
		rec.Currency, rec.FxRate.String(), rec.LowFx.String(), rec.LowFxTime,
		rec.Value.String(), rec.BestValue.String(), rec.BestValueTime,
	}
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// Close flushes and closes the underlying file.
func (s *CSVSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
