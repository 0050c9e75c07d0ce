package infra

import "fmt"

// FetchKind is the closed set of quote fetch failure modes. Every error
// a quote source returns is tagged with exactly one kind; the loop
// branches on the kind, never on concrete error types.
type FetchKind int

const (
	KindConnection FetchKind = iota
	KindTimeout
	KindInvalidSymbol
	KindMalformedResponse
)

func (k FetchKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindTimeout:
		return "timeout"
	case KindInvalidSymbol:
		return "invalid symbol"
	case KindMalformedResponse:
		return "malformed response"
	}
	return "unknown"
}

// FetchError wraps a quote source failure with its kind and the symbol
// being fetched.
type FetchError struct {
	Kind   FetchKind
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.Symbol, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Symbol, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func newFetchError(kind FetchKind, symbol string, err error) *FetchError {
	return &FetchError{Kind: kind, Symbol: symbol, Err: err}
}
