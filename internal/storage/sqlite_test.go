package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ticks.db")

	sink, err := NewSQLiteSink(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := sink.Append(testRecord("Start")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Append(testRecord("Run")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM ticks").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("want 2 rows, got %d", count)
	}

	var status, symbol, value string
	err = db.QueryRow("SELECT status, symbol, value FROM ticks ORDER BY id LIMIT 1").
		Scan(&status, &symbol, &value)
	if err != nil {
		t.Fatal(err)
	}
	if status != "Start" || symbol != "aapl" || value != "176.76" {
		t.Errorf("unexpected first row: %s %s %s", status, symbol, value)
	}
}
