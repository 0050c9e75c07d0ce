package domain

import (
	"fmt"
	"strings"
)

// Currency is the display/threshold currency for a run.
// Quotes are always fetched in USD; non-USD currencies pull a second
// quote for the FX pair returned by PairSymbol.
type Currency string

const (
	USD Currency = "usd"
	EUR Currency = "eur"
	GBP Currency = "gbp"
	ZAR Currency = "zar"
)

// ParseCurrency validates a user-supplied currency code.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToLower(strings.TrimSpace(s))) {
	case USD:
		return USD, nil
	case EUR:
		return EUR, nil
	case GBP:
		return GBP, nil
	case ZAR:
		return ZAR, nil
	}
	return "", fmt.Errorf("unsupported currency %q (want usd, eur, gbp or zar)", s)
}

// IsNative reports whether no currency conversion is needed.
func (c Currency) IsNative() bool { return c == USD }

// Glyph returns the currency sign used in the display and notices.
func (c Currency) Glyph() string {
	switch c {
	case GBP:
		return "£"
	case EUR:
		return "€"
	case ZAR:
		return "R"
	case USD:
		return "$"
	}
	return "#"
}

// PairSymbol returns the synthetic quote symbol for the currency-to-USD rate.
func (c Currency) PairSymbol() string {
	return string(c) + "usd=x"
}

func (c Currency) String() string { return strings.ToUpper(string(c)) }
