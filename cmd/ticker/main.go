package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/llamakarma/goticker/internal/domain"
	"github.com/llamakarma/goticker/internal/engine"
	"github.com/llamakarma/goticker/internal/infra"
	"github.com/llamakarma/goticker/internal/render"
	"github.com/llamakarma/goticker/internal/storage"
)

const version = "1.0.0"

// Exit codes: 0 clean quit, 1 terminate signal, 3 first-tick fetch
// failure, 2 bad arguments or configuration.
const (
	exitOK     = 0
	exitSignal = 1
	exitUsage  = 2
	exitFetch  = 3
)

func main() {
	os.Exit(run())
}

// run keeps all teardown in defers; main maps its result straight to
// os.Exit, which would skip them if they lived there.
func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	setupLogger(cfg)

	currency, err := domain.ParseCurrency(cfg.Currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		slog.Warn("cannot load America/New_York, using UTC", slog.Any("error", err))
		est = time.UTC
	}

	session := domain.NewSession(domain.Settings{
		Symbol:            cfg.Symbol,
		Currency:          currency,
		Multiplier:        decimal.NewFromFloat(cfg.Multiplier),
		Threshold:         decimal.NewFromFloat(cfg.Threshold),
		ThresholdFromOpen: cfg.ThresholdFromOpen,
		StepPercent:       cfg.ThresholdPercent,
		RefreshSeconds:    cfg.RefreshSeconds,
		RefreshIncrement:  cfg.RefreshIncrement,
		Precision:         int32(cfg.Precision),
		SoundEnabled:      !cfg.Muted,
	}, time.Now())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var keys engine.KeySource = engine.NopKeys{}
	keyboard, err := infra.OpenKeyboard()
	if err != nil {
		slog.Warn("hotkeys disabled", slog.Any("error", err))
	} else {
		// The terminal must come back buffered and echoing on every
		// exit path, including signals.
		defer keyboard.Restore()
		keys = keyboard
	}

	source, cleanup, err := openSource(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	defer cleanup()

	var sink storage.Sink
	if cfg.OutputPath != "" {
		sink, err = storage.Open(cfg.OutputPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
		defer sink.Close()
	}

	display := render.NewConsole(os.Stdout, version, cfg.Brief, est)
	loop := engine.New(session, source, keys, display, sink, est)

	switch err := loop.Run(ctx); {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		display.Farewell()
		return exitSignal
	default:
		var ferr *infra.FetchError
		if errors.As(err, &ferr) {
			return exitFetch
		}
		slog.Error("ticker stopped", slog.Any("error", err))
		return exitSignal
	}
}

// loadConfig merges defaults, the optional YAML file, the environment
// and finally the command line, in that order of precedence.
func loadConfig() (*infra.Config, error) {
	var (
		configPath  = flag.String("config", "ticker.yaml", "YAML config file")
		symbol      = flag.String("s", "", "stock symbol to watch")
		currency    = flag.String("c", "", "threshold/value currency: usd, eur, gbp or zar")
		multiplier  = flag.Float64("m", 0, "multiplier (price x multiplier = value)")
		threshold   = flag.Float64("t", 0, "threshold value for alerts (0 = disabled)")
		fromOpen    = flag.Bool("tv", false, "threshold = opening price x multiplier")
		stepPercent = flag.Int("p", 0, "threshold hotkey (u/d) step in % of threshold")
		interval    = flag.Int("i", 0, "refresh interval in seconds")
		refreshInc  = flag.Int("r", 0, "refresh hotkey (f/s) step in seconds")
		precision   = flag.Int("d", -1, "decimal places for stock and currency prices")
		output      = flag.String("o", "", "output sink path (.csv or .db)")
		brief       = flag.Bool("b", false, "brief output: drop PRICE, VALUE and BEST lines")
		muted       = flag.Bool("q", false, "start with alert sound muted")
		source      = flag.String("source", "", "quote source: yahoo or stream")
	)
	flag.Parse()

	// The default config path is optional; an explicit one must exist.
	required := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			required = true
		}
	})

	cfg, err := infra.Load(*configPath, required)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s":
			cfg.Symbol = *symbol
		case "c":
			cfg.Currency = *currency
		case "m":
			cfg.Multiplier = *multiplier
		case "t":
			cfg.Threshold = *threshold
		case "tv":
			cfg.ThresholdFromOpen = *fromOpen
		case "p":
			cfg.ThresholdPercent = *stepPercent
		case "i":
			cfg.RefreshSeconds = *interval
		case "r":
			cfg.RefreshIncrement = *refreshInc
		case "d":
			cfg.Precision = *precision
		case "o":
			cfg.OutputPath = *output
		case "b":
			cfg.Brief = *brief
		case "q":
			cfg.Muted = *muted
		case "source":
			cfg.Source = *source
		}
	})

	// An explicit threshold beats threshold-from-open.
	if cfg.Threshold > 0 && cfg.ThresholdFromOpen {
		cfg.ThresholdFromOpen = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openSource builds the configured quote source. The stream source
// needs its reader started and stopped around the run.
func openSource(ctx context.Context, cfg *infra.Config) (engine.QuoteSource, func(), error) {
	switch cfg.Source {
	case infra.SourceStream:
		symbols := []string{cfg.Symbol}
		if c, err := domain.ParseCurrency(cfg.Currency); err == nil && !c.IsNative() {
			symbols = append(symbols, c.PairSymbol())
		}
		src := infra.NewStreamSource(cfg.API.StreamURL, symbols)
		if err := src.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("start quote stream: %w", err)
		}
		return src, src.Stop, nil
	default:
		return infra.NewYahooClient(cfg), func() {}, nil
	}
}

func setupLogger(cfg *infra.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
