package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// DefaultUserAgent is a browser-like identity; the Yahoo endpoints
// reject requests that look like bots.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// yahooChartResponse represents the Yahoo Finance Chart API response.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooClient fetches live prices from the Yahoo Finance chart API, one
// synchronous request per call. Timeouts live in the HTTP client; the
// caller sees them as a tagged fetch failure.
type YahooClient struct {
	client *resty.Client
}

// NewYahooClient creates a quote client from API configuration.
func NewYahooClient(cfg *Config) *YahooClient {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooURL).
		SetHeader("User-Agent", DefaultUserAgent)
	return &YahooClient{client: client}
}

// Fetch returns the current market price for a symbol. Failures carry
// one of the four FetchKind tags.
func (c *YahooClient) Fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get("/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return decimal.Zero, newFetchError(transportKind(err), symbol, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return decimal.Zero, newFetchError(KindInvalidSymbol, symbol, fmt.Errorf("no such symbol"))
	}
	if resp.StatusCode() != http.StatusOK {
		return decimal.Zero, newFetchError(KindMalformedResponse, symbol, fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}

	var data yahooChartResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return decimal.Zero, newFetchError(KindMalformedResponse, symbol, err)
	}
	if data.Chart.Error != nil {
		kind := KindMalformedResponse
		if data.Chart.Error.Code == "Not Found" {
			kind = KindInvalidSymbol
		}
		return decimal.Zero, newFetchError(kind, symbol,
			fmt.Errorf("%s: %s", data.Chart.Error.Code, data.Chart.Error.Description))
	}
	if len(data.Chart.Result) == 0 {
		return decimal.Zero, newFetchError(KindMalformedResponse, symbol, fmt.Errorf("empty chart result"))
	}

	price := decimal.NewFromFloat(data.Chart.Result[0].Meta.RegularMarketPrice)
	if !price.IsPositive() {
		return decimal.Zero, newFetchError(KindMalformedResponse, symbol, fmt.Errorf("non-positive price %s", price))
	}
	return price, nil
}

// transportKind splits pre-response errors into timeout vs connection.
func transportKind(err error) FetchKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}
