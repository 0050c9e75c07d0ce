package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TickKind tags the outcome of ApplyQuote.
type TickKind int

const (
	TickBaseline TickKind = iota // first observation after start or reset
	TickUpdate
)

func (k TickKind) String() string {
	if k == TickBaseline {
		return "Start"
	}
	return "Run"
}

// QuoteResult reports what a single observation changed, for rendering
// and sink records. Deltas are signed percentages against the bests that
// were in force before this observation.
type QuoteResult struct {
	Kind TickKind

	PriceImproved bool // strictly new running high price
	FxImproved    bool // strictly new running low rate
	ValueImproved bool // strictly new best value, time updated
	ValueMatched  bool // value == best value; highlight only, time kept

	ValueDelta decimal.Decimal
	PriceDelta decimal.Decimal
	FxDelta    decimal.Decimal
}

// Settings are the immutable-per-run inputs a Session is built from.
type Settings struct {
	Symbol            string
	Currency          Currency
	Multiplier        decimal.Decimal
	Threshold         decimal.Decimal
	ThresholdFromOpen bool
	// StepPercent is the U/D hotkey adjustment in percent of the
	// threshold; 0 means not configured (defaults apply).
	StepPercent      int
	RefreshSeconds   int
	RefreshIncrement int
	Precision        int32
	SoundEnabled     bool
}

// Session is the single source of truth for one monitoring run. It is
// owned and mutated exclusively by the polling loop; there is no
// concurrent access and no locking.
type Session struct {
	Symbol     string
	Currency   Currency
	Multiplier decimal.Decimal
	Precision  int32

	CurrentPrice decimal.Decimal
	CurrentFx    decimal.Decimal
	CurrentEquiv decimal.Decimal
	CurrentValue decimal.Decimal

	BestPrice     decimal.Decimal
	BestPriceTime time.Time
	LowFx         decimal.Decimal
	LowFxTime     time.Time
	BestValue     decimal.Decimal
	BestValueTime time.Time

	Threshold         decimal.Decimal
	ThresholdStep     decimal.Decimal
	ThresholdFromOpen bool
	stepPercent       int

	RefreshInterval  int // seconds between ticks
	RefreshIncrement int // F/S hotkey step, also the interval floor

	SoundEnabled   bool
	FirstIteration bool

	StartTime time.Time
}

// NewSession builds a run's session from settings. Baselines stay unset
// until the first successful quote seeds them.
func NewSession(st Settings, now time.Time) *Session {
	s := &Session{
		Symbol:            st.Symbol,
		Currency:          st.Currency,
		Multiplier:        st.Multiplier,
		Precision:         st.Precision,
		Threshold:         st.Threshold,
		ThresholdFromOpen: st.ThresholdFromOpen,
		stepPercent:       st.StepPercent,
		RefreshInterval:   st.RefreshSeconds,
		RefreshIncrement:  st.RefreshIncrement,
		SoundEnabled:      st.SoundEnabled,
		FirstIteration:    true,
		StartTime:         now,
	}
	s.ThresholdStep = deriveStep(s.Threshold, s.ThresholdFromOpen, s.stepPercent)
	return s
}

// deriveStep computes the U/D hotkey increment. With no explicit percent
// the step is 100 currency units while the threshold is disabled, or 5%
// of the threshold once one exists. An explicit percent scales either
// the hundred-unit base or the threshold itself.
func deriveStep(threshold decimal.Decimal, fromOpen bool, percent int) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if percent <= 0 {
		if threshold.IsZero() && !fromOpen {
			return hundred
		}
		return threshold.Mul(decimal.NewFromInt(5)).Div(hundred)
	}
	p := decimal.NewFromInt(int64(percent))
	if threshold.IsZero() {
		return p.Mul(hundred)
	}
	return threshold.Mul(p).Div(hundred)
}

// ApplyQuote folds one successful observation into the session. On the
// first iteration it seeds every baseline from the observation itself;
// afterwards it updates bests/lows on strict improvement only and
// reports deltas against the pre-update marks.
func (s *Session) ApplyQuote(price, fx decimal.Decimal, now time.Time) QuoteResult {
	rate := s.displayRate(fx)
	price = price.Round(s.Precision)
	fx = fx.Round(s.Precision)
	equiv := price.Div(rate).Round(s.Precision)
	value := s.Multiplier.Mul(equiv).Round(s.Precision)

	s.CurrentPrice = price
	s.CurrentFx = fx
	s.CurrentEquiv = equiv
	s.CurrentValue = value

	if s.FirstIteration {
		s.BestPrice = price
		s.BestPriceTime = now
		s.LowFx = fx
		s.LowFxTime = now
		s.BestValue = value
		s.BestValueTime = now
		if s.ThresholdFromOpen {
			s.Threshold = value
			s.ThresholdStep = deriveStepFromOpen(value, s.stepPercent)
		}
		s.FirstIteration = false
		return QuoteResult{Kind: TickBaseline}
	}

	res := QuoteResult{
		Kind:       TickUpdate,
		ValueDelta: pctDelta(value, s.BestValue),
		PriceDelta: pctDelta(price, s.BestPrice),
		FxDelta:    pctDelta(fx, s.LowFx),
	}

	if price.GreaterThan(s.BestPrice) {
		s.BestPrice = price
		s.BestPriceTime = now
		res.PriceImproved = true
	}
	if fx.LessThan(s.LowFx) {
		s.LowFx = fx
		s.LowFxTime = now
		res.FxImproved = true
	}
	switch {
	case value.GreaterThan(s.BestValue):
		s.BestValue = value
		s.BestValueTime = now
		res.ValueImproved = true
	case value.Equal(s.BestValue):
		// Highlight without moving the timestamp.
		res.ValueMatched = true
	}
	return res
}

// deriveStepFromOpen re-derives the hotkey step once an open-derived
// threshold becomes known: 1% of the opening value unless an explicit
// percent was configured.
func deriveStepFromOpen(openValue decimal.Decimal, percent int) decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if percent <= 0 {
		return openValue.Div(hundred)
	}
	return openValue.Mul(decimal.NewFromInt(int64(percent))).Div(hundred)
}

// Reset returns the session to the first-iteration state. Bests are
// re-seeded by the next successful quote; symbol, currency, multiplier,
// threshold and refresh settings are kept.
func (s *Session) Reset(now time.Time) {
	s.FirstIteration = true
	s.StartTime = now
}

// displayRate returns the divisor for the price conversion at the
// display precision. A positive rate that rounds away to zero (a weak
// currency at precision 0) falls back to the raw rate so the division
// stays finite.
func (s *Session) displayRate(fx decimal.Decimal) decimal.Decimal {
	r := fx.Round(s.Precision)
	if r.IsZero() {
		return fx
	}
	return r
}

// ValueEquivalent computes multiplier x price/fx without display
// rounding, the quantity threshold comparisons are made against.
func (s *Session) ValueEquivalent(price, fx decimal.Decimal) decimal.Decimal {
	return s.Multiplier.Mul(price.Div(fx))
}

func pctDelta(current, mark decimal.Decimal) decimal.Decimal {
	if mark.IsZero() {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	return current.Div(mark).Sub(one).Mul(decimal.NewFromInt(100)).Round(2)
}
