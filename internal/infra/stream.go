package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const streamReconnectDelay = 3 * time.Second

// streamSubscribe is the subscription request sent after connecting.
type streamSubscribe struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

// streamTick is one pushed quote. Price arrives as a JSON number kept
// in string form to avoid float churn before the decimal parse.
type streamTick struct {
	Symbol string      `json:"symbol"`
	Price  json.Number `json:"price"`
}

// StreamSource is a quote source fed by a websocket push feed. A
// background reader caches the last price per symbol; Fetch is a cache
// read, so the polling loop keeps its synchronous per-tick shape.
type StreamSource struct {
	url     string
	symbols []string

	mu     sync.RWMutex
	prices map[string]decimal.Decimal

	connected atomic.Bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewStreamSource creates a source subscribed to the given symbols.
func NewStreamSource(url string, symbols []string) *StreamSource {
	return &StreamSource{
		url:     url,
		symbols: symbols,
		prices:  make(map[string]decimal.Decimal),
	}
}

// Start connects and begins reading in the background, reconnecting on
// failure until the context ends.
func (s *StreamSource) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			if err := s.readOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("quote stream disconnected", slog.Any("error", err))
			}
			s.connected.Store(false)
			select {
			case <-ctx.Done():
				return
			case <-time.After(streamReconnectDelay):
			}
		}
	}()
	return nil
}

// Stop terminates the reader and waits for it to exit.
func (s *StreamSource) Stop() {
	if s.cancel != nil {
		s.cancel()
		s.wg.Wait()
	}
}

// Fetch returns the last pushed price for a symbol. Before the feed has
// delivered anything the failure kind depends on whether a connection
// exists at all.
func (s *StreamSource) Fetch(_ context.Context, symbol string) (decimal.Decimal, error) {
	s.mu.RLock()
	price, ok := s.prices[strings.ToUpper(symbol)]
	s.mu.RUnlock()
	if ok {
		return price, nil
	}
	if !s.connected.Load() {
		return decimal.Zero, newFetchError(KindConnection, symbol, fmt.Errorf("feed not connected"))
	}
	return decimal.Zero, newFetchError(KindMalformedResponse, symbol, fmt.Errorf("no data received yet"))
}

func (s *StreamSource) readOnce(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := streamSubscribe{Op: "subscribe", Symbols: s.symbols}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	s.connected.Store(true)
	slog.Info("quote stream connected", slog.String("url", s.url), slog.Int("symbols", len(s.symbols)))

	// Unblock the read loop when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var tick streamTick
		if err := json.Unmarshal(msg, &tick); err != nil || tick.Symbol == "" {
			continue
		}
		price, err := decimal.NewFromString(tick.Price.String())
		if err != nil || !price.IsPositive() {
			continue
		}
		s.mu.Lock()
		s.prices[strings.ToUpper(tick.Symbol)] = price
		s.mu.Unlock()
	}
}
