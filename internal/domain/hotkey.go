package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HotkeyEffect identifies what a consumed keystroke did, so the loop can
// emit the matching notice. Exactly one keystroke is consumed per tick.
type HotkeyEffect int

const (
	EffectNone HotkeyEffect = iota
	EffectQuit
	EffectReset
	EffectThresholdUp
	EffectThresholdDown
	EffectFaster
	EffectSlower
	EffectShowThreshold
	EffectToggleSound
)

// ApplyHotkey applies a single keystroke to the session. Keys are
// case-insensitive; anything unrecognised is a silent no-op. Each key is
// one complete transition, there are no multi-key modes.
func (s *Session) ApplyHotkey(key byte, now time.Time) HotkeyEffect {
	switch key {
	case 'Q', 'q':
		return EffectQuit
	case 'R', 'r':
		s.Reset(now)
		return EffectReset
	case 'U', 'u':
		s.Threshold = s.Threshold.Add(s.ThresholdStep)
		return EffectThresholdUp
	case 'D', 'd':
		t := s.Threshold.Sub(s.ThresholdStep)
		if t.Sign() <= 0 {
			// Crossing zero disables the threshold, never negative.
			t = decimal.Zero
		}
		s.Threshold = t
		return EffectThresholdDown
	case 'F', 'f':
		if s.RefreshInterval-s.RefreshIncrement <= 2 {
			s.RefreshInterval = s.RefreshIncrement
		} else {
			s.RefreshInterval -= s.RefreshIncrement
		}
		return EffectFaster
	case 'S', 's':
		s.RefreshInterval += s.RefreshIncrement
		return EffectSlower
	case 'T', 't':
		return EffectShowThreshold
	case 'B', 'b':
		s.SoundEnabled = !s.SoundEnabled
		return EffectToggleSound
	}
	return EffectNone
}
