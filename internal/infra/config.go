package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/llamakarma/goticker/internal/domain"
)

// Source selects the quote backend.
const (
	SourceYahoo  = "yahoo"
	SourceStream = "stream"
)

// Config holds everything a run needs. Values come from defaults, an
// optional YAML file, environment variables (which win over the file)
// and finally command-line flags, merged in cmd/ticker.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Symbol            string  `yaml:"symbol"`
	Currency          string  `yaml:"currency"`
	Multiplier        float64 `yaml:"multiplier"`
	Threshold         float64 `yaml:"threshold"`
	ThresholdFromOpen bool    `yaml:"threshold_from_open"`
	ThresholdPercent  int     `yaml:"threshold_percent"`
	RefreshSeconds    int     `yaml:"refresh_seconds"`
	RefreshIncrement  int     `yaml:"refresh_increment"`
	Precision         int     `yaml:"precision"`
	OutputPath        string  `yaml:"output_path"`
	Brief             bool    `yaml:"brief"`
	Muted             bool    `yaml:"muted"`
	Source            string  `yaml:"source"`

	API struct {
		Debug     bool          `yaml:"debug"`
		Timeout   time.Duration `yaml:"timeout"`
		YahooURL  string        `yaml:"yahoo_url"`
		StreamURL string        `yaml:"stream_url"`
	} `yaml:"api"`
}

// Default returns the built-in configuration: the S&P 500 in USD, one
// unit, no threshold, a 20 second interval.
func Default() *Config {
	cfg := &Config{
		LogLevel:         "info",
		Symbol:           "^gspc",
		Currency:         "usd",
		Multiplier:       1,
		RefreshSeconds:   20,
		RefreshIncrement: 5,
		Precision:        4,
		Source:           SourceYahoo,
	}
	cfg.API.Timeout = 10 * time.Second
	cfg.API.YahooURL = "https://query1.finance.yahoo.com"
	cfg.API.StreamURL = "ws://localhost:18092/ws"
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file
// and environment variables. A missing file at the default path is not
// an error; an explicitly requested file must exist. The result is not
// validated here: command-line flags still get merged on top, and a
// flag may correct a bad file or environment value. Callers run
// Validate once the merge is complete.
func Load(path string, required bool) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !required:
			// defaults only
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	overrideWithEnv(cfg)
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if _, err := domain.ParseCurrency(c.Currency); err != nil {
		return err
	}
	if c.Multiplier <= 0 {
		return fmt.Errorf("multiplier must be positive, got %v", c.Multiplier)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must not be negative, got %v", c.Threshold)
	}
	if c.RefreshSeconds <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %d", c.RefreshSeconds)
	}
	if c.RefreshIncrement <= 0 {
		return fmt.Errorf("refresh increment must be positive, got %d", c.RefreshIncrement)
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision must not be negative, got %d", c.Precision)
	}
	if c.Source != SourceYahoo && c.Source != SourceStream {
		return fmt.Errorf("unknown quote source %q (want %s or %s)", c.Source, SourceYahoo, SourceStream)
	}
	if c.Source == SourceStream && c.API.StreamURL == "" {
		return fmt.Errorf("stream source requires api.stream_url")
	}
	return nil
}

// overrideWithEnv lets the environment win over the config file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("TICKER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TICKER_SYMBOL"); v != "" {
		cfg.Symbol = v
	}
	if v := os.Getenv("TICKER_CURRENCY"); v != "" {
		cfg.Currency = v
	}
	if v := os.Getenv("TICKER_OUTPUT"); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv("TICKER_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("TICKER_YAHOO_URL"); v != "" {
		cfg.API.YahooURL = v
	}
	if v := os.Getenv("TICKER_STREAM_URL"); v != "" {
		cfg.API.StreamURL = v
	}
	if v := os.Getenv("TICKER_API_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.API.Debug = b
		}
	}
}
