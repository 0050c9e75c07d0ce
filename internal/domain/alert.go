package domain

import "github.com/shopspring/decimal"

// Classification is the alert verdict for one observation. Threshold
// crossings outrank new highs; the two carry distinct sound signals.
type Classification int

const (
	AlertNone Classification = iota
	AlertNewHigh
	AlertThresholdCrossed
)

func (c Classification) String() string {
	switch c {
	case AlertNewHigh:
		return "NEW_HIGH"
	case AlertThresholdCrossed:
		return "THRESHOLD_CROSSED"
	}
	return "NONE"
}

// Classify decides the alert for an incoming quote, evaluated against
// the session as it stands BEFORE ApplyQuote folds the quote in. The
// first iteration has no baseline to compare against and never alerts.
// The threshold comparison uses the unrounded value equivalent; the
// new-high comparison uses the display-rounded value, matching what the
// best-value bookkeeping itself stores.
func Classify(s *Session, price, fx decimal.Decimal) Classification {
	if s.FirstIteration {
		return AlertNone
	}
	if s.Threshold.IsPositive() && s.ValueEquivalent(price, fx).GreaterThan(s.Threshold) {
		return AlertThresholdCrossed
	}
	equiv := price.Round(s.Precision).Div(s.displayRate(fx)).Round(s.Precision)
	value := s.Multiplier.Mul(equiv).Round(s.Precision)
	if value.GreaterThan(s.BestValue) {
		return AlertNewHigh
	}
	return AlertNone
}
