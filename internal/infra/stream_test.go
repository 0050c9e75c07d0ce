package infra

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newFeedServer runs a websocket endpoint that answers a subscription
// with one pushed tick per subscribed symbol.
func newFeedServer(t *testing.T, price string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var sub streamSubscribe
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		for _, symbol := range sub.Symbols {
			_ = conn.WriteJSON(map[string]string{"symbol": strings.ToUpper(symbol), "price": price})
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamSource(t *testing.T) {
	t.Run("Serves Cached Prices", func(t *testing.T) {
		srv := newFeedServer(t, "101.5")
		defer srv.Close()

		src := NewStreamSource(wsURL(srv), []string{"aapl"})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := src.Start(ctx); err != nil {
			t.Fatalf("start: %v", err)
		}
		defer src.Stop()

		want := decimal.RequireFromString("101.5")
		deadline := time.Now().Add(2 * time.Second)
		for {
			price, err := src.Fetch(ctx, "aapl")
			if err == nil {
				if !price.Equal(want) {
					t.Fatalf("price: want %s, got %s", want, price)
				}
				return
			}
			if time.Now().After(deadline) {
				t.Fatalf("no price before deadline, last error: %v", err)
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("Not Connected Is A Connection Failure", func(t *testing.T) {
		src := NewStreamSource("ws://localhost:1/ws", []string{"aapl"})

		_, err := src.Fetch(context.Background(), "aapl")
		var ferr *FetchError
		if !errors.As(err, &ferr) || ferr.Kind != KindConnection {
			t.Fatalf("want connection failure, got %v", err)
		}
	})
}
