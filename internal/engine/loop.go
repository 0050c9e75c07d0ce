// Package engine drives the polling loop: hotkey intake, quote fetch,
// session update, alert classification, rendering, sink records and the
// interruptible countdown, one tick at a time on a single goroutine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/llamakarma/goticker/internal/domain"
	"github.com/llamakarma/goticker/internal/infra"
	"github.com/llamakarma/goticker/internal/storage"
)

const (
	clockFormat = "15:04:05"
	dateFormat  = "02-01-2006"
)

// QuoteSource fetches one price per call. Implementations own their
// timeouts; failures must be tagged infra.FetchError values.
type QuoteSource interface {
	Fetch(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// KeySource hands out at most one pending keystroke per call, without
// blocking.
type KeySource interface {
	Poll() (byte, bool)
}

// NopKeys is a KeySource with no keys, used when stdin is not a
// terminal.
type NopKeys struct{}

func (NopKeys) Poll() (byte, bool) { return 0, false }

// Report carries everything the renderer needs about one tick beyond
// the session itself.
type Report struct {
	Now    time.Time
	Result domain.QuoteResult
	Alert  domain.Classification
}

// Display is the presentation collaborator. The loop hands it
// structured values; layout, colors and bells are its business.
type Display interface {
	Header(s *domain.Session)
	Tick(s *domain.Session, rep Report)
	Notice(text string)
	Countdown(remaining int, soundOn bool)
	Delimiter()
	Farewell()
}

// Loop owns one monitoring run. Now and Sleep default to the real clock
// and are swapped out in tests.
type Loop struct {
	Session *domain.Session
	Source  QuoteSource
	Keys    KeySource
	Display Display
	Sink    storage.Sink // nil when no output is configured
	EST     *time.Location

	Now   func() time.Time
	Sleep func(d time.Duration)
}

// New builds a loop with the real clock.
func New(session *domain.Session, source QuoteSource, keys KeySource, display Display, sink storage.Sink, est *time.Location) *Loop {
	return &Loop{
		Session: session,
		Source:  source,
		Keys:    keys,
		Display: display,
		Sink:    sink,
		EST:     est,
		Now:     time.Now,
		Sleep:   time.Sleep,
	}
}

// Run executes ticks until the quit hotkey, a first-tick fetch failure
// or context cancellation. It returns nil on a clean quit, the tagged
// fetch error when the very first fetch fails, and ctx.Err() on
// cancellation; the caller maps these to exit codes.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if key, ok := l.Keys.Poll(); ok {
			if quit := l.applyHotkey(key); quit {
				l.Display.Farewell()
				return nil
			}
		}

		first := l.Session.FirstIteration
		if first {
			l.Display.Header(l.Session)
		}

		price, fx, err := l.fetch(ctx)
		if err != nil {
			l.advise(err, first)
			if first {
				return err
			}
			// Skip the data update; the previous state stands and the
			// next scheduled tick is the retry.
			if cerr := l.countdown(ctx); cerr != nil {
				return cerr
			}
			continue
		}

		now := l.Now()
		alert := domain.Classify(l.Session, price, fx)
		res := l.Session.ApplyQuote(price, fx, now)
		rep := Report{Now: now, Result: res, Alert: alert}

		l.Display.Tick(l.Session, rep)

		if l.Sink != nil {
			if err := l.Sink.Append(l.record(rep)); err != nil {
				slog.Warn("output sink write failed", slog.Any("error", err))
			}
		}

		if err := l.countdown(ctx); err != nil {
			return err
		}
	}
}

// fetch pulls the primary quote and, when converting, the FX quote.
// Either failure aborts the whole tick so the session never sees a
// partial observation.
func (l *Loop) fetch(ctx context.Context) (price, fx decimal.Decimal, err error) {
	price, err = l.Source.Fetch(ctx, l.Session.Symbol)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	fx = decimal.NewFromInt(1)
	if !l.Session.Currency.IsNative() {
		fx, err = l.Source.Fetch(ctx, l.Session.Currency.PairSymbol())
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	return price, fx, nil
}

// applyHotkey consumes one keystroke and emits the matching notice.
// Returns true when the key asked for termination.
func (l *Loop) applyHotkey(key byte) bool {
	s := l.Session
	switch s.ApplyHotkey(key, l.Now()) {
	case domain.EffectQuit:
		return true
	case domain.EffectThresholdUp:
		l.Display.Notice(fmt.Sprintf("--- Increase threshold to %s%s ---",
			s.Currency.Glyph(), s.Threshold.Round(2)))
	case domain.EffectThresholdDown:
		l.Display.Notice(fmt.Sprintf("--- Reduce threshold to %s%s ---",
			s.Currency.Glyph(), s.Threshold.Round(2)))
	case domain.EffectShowThreshold:
		l.Display.Notice(fmt.Sprintf("--- Current threshold is %s%s ---",
			s.Currency.Glyph(), s.Threshold.Round(2)))
	case domain.EffectToggleSound:
		if s.SoundEnabled {
			l.Display.Notice("--- Alerts enabled ---")
		} else {
			l.Display.Notice("--- Alerts disabled ---")
		}
	}
	return false
}

// countdown runs the per-second refresh timer. Hotkeys pressed here
// stay queued until the next tick's poll; only cancellation cuts the
// wait short, checked once per second.
func (l *Loop) countdown(ctx context.Context) error {
	total := l.Session.RefreshInterval
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Display.Countdown(total-i, l.Session.SoundEnabled)
		l.Sleep(time.Second)
	}
	l.Display.Delimiter()
	return nil
}

func (l *Loop) record(rep Report) storage.TickRecord {
	s := l.Session
	return storage.TickRecord{
		Status:        rep.Result.Kind.String(),
		Time:          rep.Now.Format(clockFormat),
		TimeEST:       rep.Now.In(l.EST).Format(clockFormat),
		Date:          s.StartTime.Format(dateFormat),
		Symbol:        s.Symbol,
		Price:         s.CurrentPrice,
		BestPrice:     s.BestPrice,
		BestPriceTime: s.BestPriceTime.Format(clockFormat),
		Currency:      string(s.Currency),
		FxRate:        s.CurrentFx,
		LowFx:         s.LowFx,
		LowFxTime:     s.LowFxTime.Format(clockFormat),
		Value:         s.CurrentValue,
		BestValue:     s.BestValue,
		BestValueTime: s.BestValueTime.Format(clockFormat),
	}
}

// advise logs a kind-specific message for a failed fetch. First-tick
// failures are fatal and phrased accordingly.
func (l *Loop) advise(err error, first bool) {
	var ferr *infra.FetchError
	if !errors.As(err, &ferr) {
		slog.Error("quote fetch failed", slog.Any("error", err))
		return
	}

	var msg string
	switch ferr.Kind {
	case infra.KindConnection:
		msg = "cannot connect to the quote server, wifi on buddy?"
	case infra.KindTimeout:
		msg = "timeout talking to the quote server"
	case infra.KindInvalidSymbol:
		msg = "that does not look like a real symbol"
	case infra.KindMalformedResponse:
		msg = "glitch in the matrix: cannot read the market API"
	default:
		msg = "quote fetch failed"
	}

	if first {
		slog.Error(msg, slog.String("symbol", ferr.Symbol), slog.String("kind", ferr.Kind.String()))
		return
	}
	slog.Warn(msg+", using last known price", slog.String("symbol", ferr.Symbol), slog.String("kind", ferr.Kind.String()))
}
