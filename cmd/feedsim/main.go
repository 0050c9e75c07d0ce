// feedsim is a development quote feed: a websocket server that pushes a
// scripted price wave for whatever symbols a client subscribes to. Run
// the ticker with -source stream against it to exercise the stream
// source without touching a real market API.
package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type subscribeMsg struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

type tickMsg struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	addr := flag.String("addr", ":18092", "listen address")
	period := flag.Duration("period", time.Second, "push period per symbol")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveFeed(w, r, *period)
	})

	slog.Info("feedsim listening", slog.String("addr", *addr))
	if err := http.ListenAndServe(*addr, nil); err != nil {
		slog.Error("feedsim failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func serveFeed(w http.ResponseWriter, r *http.Request, period time.Duration) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	var sub subscribeMsg
	if err := conn.ReadJSON(&sub); err != nil || sub.Op != "subscribe" || len(sub.Symbols) == 0 {
		slog.Warn("bad subscription", slog.Any("error", err))
		return
	}
	slog.Info("client subscribed", slog.Any("symbols", sub.Symbols))

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	step := 0
	for range ticker.C {
		for _, symbol := range sub.Symbols {
			msg := tickMsg{
				Symbol: strings.ToUpper(symbol),
				Price:  fmt.Sprintf("%.4f", wavePrice(symbol, step)),
			}
			if err := conn.WriteJSON(msg); err != nil {
				slog.Info("client gone", slog.Any("error", err))
				return
			}
		}
		step++
	}
}

// wavePrice walks a sine wave around a per-symbol base so thresholds
// and new highs both trigger within a short run.
func wavePrice(symbol string, step int) float64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToUpper(symbol)))
	base := 50 + float64(h.Sum32()%9000)/10 // 50.0 .. 949.9

	swing := base * 0.05
	return base + swing*math.Sin(float64(step)/7)
}
