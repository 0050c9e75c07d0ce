package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func testRecord(status string) TickRecord {
	d := decimal.RequireFromString
	return TickRecord{
		Status:        status,
		Time:          "10:00:00",
		TimeEST:       "05:00:00",
		Date:          "25-08-2026",
		Symbol:        "aapl",
		Price:         d("150.25"),
		BestPrice:     d("151"),
		BestPriceTime: "09:58:00",
		Currency:      "eur",
		FxRate:        d("0.85"),
		LowFx:         d("0.84"),
		LowFxTime:     "09:55:00",
		Value:         d("176.76"),
		BestValue:     d("179.76"),
		BestValueTime: "09:58:00",
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	t.Run("Header Written Once On Create", func(t *testing.T) {
		sink, err := NewCSVSink(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := sink.Append(testRecord("Start")); err != nil {
			t.Fatal(err)
		}
		if err := sink.Close(); err != nil {
			t.Fatal(err)
		}

		rows := readRows(t, path)
		if len(rows) != 2 {
			t.Fatalf("want header + 1 row, got %d rows", len(rows))
		}
		if rows[0][0] != "Status" || rows[1][0] != "Start" {
			t.Errorf("unexpected rows: %v", rows)
		}
		if len(rows[1]) != len(csvHeader) {
			t.Errorf("row width %d != header width %d", len(rows[1]), len(csvHeader))
		}
	})

	t.Run("Reopen Appends Without Second Header", func(t *testing.T) {
		sink, err := NewCSVSink(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := sink.Append(testRecord("Run")); err != nil {
			t.Fatal(err)
		}
		if err := sink.Close(); err != nil {
			t.Fatal(err)
		}

		rows := readRows(t, path)
		if len(rows) != 3 {
			t.Fatalf("want header + 2 rows, got %d", len(rows))
		}
		for _, row := range rows[1:] {
			if row[0] == "Status" {
				t.Error("header written twice")
			}
		}
		if rows[2][0] != "Run" || rows[2][4] != "aapl" || rows[2][5] != "150.25" {
			t.Errorf("unexpected appended row: %v", rows[2])
		}
	})
}

func TestOpenPicksImplementation(t *testing.T) {
	dir := t.TempDir()

	csvSink, err := Open(filepath.Join(dir, "out.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer csvSink.Close()
	if _, ok := csvSink.(*CSVSink); !ok {
		t.Errorf("want CSV sink for .csv, got %T", csvSink)
	}

	dbSink, err := Open(filepath.Join(dir, "out.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer dbSink.Close()
	if _, ok := dbSink.(*SQLiteSink); !ok {
		t.Errorf("want SQLite sink for .db, got %T", dbSink)
	}
}
