package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestApplyHotkey(t *testing.T) {
	t0 := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("Threshold Up Down Clamps At Zero", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		if !s.ThresholdStep.Equal(dec("100")) {
			t.Fatalf("precondition: default step should be 100, got %s", s.ThresholdStep)
		}

		s.ApplyHotkey('U', t0)
		if !s.Threshold.Equal(dec("100")) {
			t.Errorf("after U: want 100, got %s", s.Threshold)
		}
		s.ApplyHotkey('D', t0)
		if !s.Threshold.Equal(decimal.Zero) {
			t.Errorf("after D: want 0, got %s", s.Threshold)
		}
		s.ApplyHotkey('D', t0)
		if !s.Threshold.Equal(decimal.Zero) {
			t.Errorf("after second D: want clamped 0, got %s", s.Threshold)
		}
	})

	t.Run("Faster Floors At Increment", func(t *testing.T) {
		st := testSettings()
		st.RefreshSeconds = 7
		st.RefreshIncrement = 5
		s := NewSession(st, t0)

		// 7-5 would leave 2 seconds, below the floor.
		if eff := s.ApplyHotkey('F', t0); eff != EffectFaster {
			t.Fatalf("want EffectFaster, got %v", eff)
		}
		if s.RefreshInterval != 5 {
			t.Errorf("want floor at increment 5, got %d", s.RefreshInterval)
		}
	})

	t.Run("Slower Adds Increment", func(t *testing.T) {
		st := testSettings()
		st.RefreshSeconds = 7
		st.RefreshIncrement = 5
		s := NewSession(st, t0)

		s.ApplyHotkey('s', t0)
		if s.RefreshInterval != 12 {
			t.Errorf("want 12, got %d", s.RefreshInterval)
		}
	})

	t.Run("Sound Toggle Is Idempotent In Pairs", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		initial := s.SoundEnabled

		s.ApplyHotkey('b', t0)
		if s.SoundEnabled == initial {
			t.Error("first toggle changed nothing")
		}
		s.ApplyHotkey('B', t0)
		if s.SoundEnabled != initial {
			t.Error("second toggle did not restore the original state")
		}
	})

	t.Run("Show Threshold Changes Nothing", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		before := *s
		if eff := s.ApplyHotkey('t', t0); eff != EffectShowThreshold {
			t.Fatalf("want EffectShowThreshold, got %v", eff)
		}
		if s.RefreshInterval != before.RefreshInterval || !s.Threshold.Equal(before.Threshold) {
			t.Error("T mutated session state")
		}
	})

	t.Run("Quit Sets No State", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		if eff := s.ApplyHotkey('q', t0); eff != EffectQuit {
			t.Fatalf("want EffectQuit, got %v", eff)
		}
		if s.FirstIteration != true {
			t.Error("quit should not touch the session")
		}
	})

	t.Run("Reset Re-Arms First Iteration", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		s.ApplyQuote(dec("100"), decimal.NewFromInt(1), t0)

		if eff := s.ApplyHotkey('r', t0.Add(time.Minute)); eff != EffectReset {
			t.Fatalf("want EffectReset, got %v", eff)
		}
		if !s.FirstIteration {
			t.Error("reset did not re-arm the baseline")
		}
		if !s.StartTime.Equal(t0.Add(time.Minute)) {
			t.Errorf("start time not re-stamped: %v", s.StartTime)
		}
	})

	t.Run("Unknown Keys Are No-Ops", func(t *testing.T) {
		s := NewSession(testSettings(), t0)
		for _, key := range []byte{'x', 'Z', '1', ' ', 0x1b} {
			if eff := s.ApplyHotkey(key, t0); eff != EffectNone {
				t.Errorf("key %q: want EffectNone, got %v", key, eff)
			}
		}
	})
}
