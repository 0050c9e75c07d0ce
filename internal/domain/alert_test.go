package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClassify(t *testing.T) {
	t0 := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	one := decimal.NewFromInt(1)

	t.Run("First Iteration Never Alerts", func(t *testing.T) {
		st := testSettings()
		st.Threshold = dec("50")
		s := NewSession(st, t0)

		if got := Classify(s, dec("90"), one); got != AlertNone {
			t.Errorf("want NONE on first iteration, got %v", got)
		}
	})

	t.Run("Threshold Crossing Sequence", func(t *testing.T) {
		st := testSettings()
		st.Threshold = dec("100")
		s := NewSession(st, t0)

		if got := Classify(s, dec("90"), one); got != AlertNone {
			t.Fatalf("tick 1: want NONE, got %v", got)
		}
		s.ApplyQuote(dec("90"), one, t0)

		if got := Classify(s, dec("105"), one); got != AlertThresholdCrossed {
			t.Errorf("tick 2: want THRESHOLD_CROSSED, got %v", got)
		}
	})

	t.Run("New High Without Threshold", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		s.ApplyQuote(dec("90"), one, t0)

		if got := Classify(s, dec("95"), one); got != AlertNewHigh {
			t.Errorf("want NEW_HIGH, got %v", got)
		}
	})

	t.Run("Threshold Outranks New High", func(t *testing.T) {
		st := testSettings()
		st.Threshold = dec("100")
		s := NewSession(st, t0)
		s.ApplyQuote(dec("90"), one, t0)

		// 105 is both above the best of 90 and over the threshold.
		if got := Classify(s, dec("105"), one); got != AlertThresholdCrossed {
			t.Errorf("want THRESHOLD_CROSSED to win, got %v", got)
		}
	})

	t.Run("Exactly At Threshold Does Not Cross", func(t *testing.T) {
		st := testSettings()
		st.Threshold = dec("100")
		s := NewSession(st, t0)
		s.ApplyQuote(dec("90"), one, t0)

		// Strictly greater is required; 100 is still a new high though.
		if got := Classify(s, dec("100"), one); got != AlertNewHigh {
			t.Errorf("want NEW_HIGH at exact threshold, got %v", got)
		}
	})

	t.Run("Threshold Uses Unrounded Equivalent", func(t *testing.T) {
		st := testSettings()
		st.Threshold = dec("100")
		st.Precision = 0
		s := NewSession(st, t0)
		s.ApplyQuote(dec("90"), one, t0)

		// 100.4 rounds to 100 for display but still crosses pre-rounding.
		if got := Classify(s, dec("100.4"), one); got != AlertThresholdCrossed {
			t.Errorf("want THRESHOLD_CROSSED on unrounded value, got %v", got)
		}
	})

	t.Run("Sub-Precision Rate Stays Finite", func(t *testing.T) {
		st := testSettings()
		st.Currency = ZAR
		st.Precision = 0
		s := NewSession(st, t0)
		s.ApplyQuote(dec("100"), dec("0.054"), t0)

		// The rate rounds away to 0 at precision 0; the new-high check
		// must fall back to the raw rate, not divide by the rounded zero.
		if got := Classify(s, dec("110"), dec("0.054")); got != AlertNewHigh {
			t.Errorf("want NEW_HIGH, got %v", got)
		}
	})

	t.Run("No Movement No Alert", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		s.ApplyQuote(dec("90"), one, t0)

		if got := Classify(s, dec("85"), one); got != AlertNone {
			t.Errorf("want NONE, got %v", got)
		}
	})
}
