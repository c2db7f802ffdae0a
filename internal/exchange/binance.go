package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"emacross/internal/config"
	"emacross/internal/model"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const maxBackoff = 16 * time.Second

// BinanceClient implements BarSource and BarStreamer for Binance spot klines.
type BinanceClient struct {
	logger    *slog.Logger
	http      *fasthttp.Client
	baseURL   string
	streamURL string
	symbol    string
	interval  string
	limit     int
	endTime   string
}

// NewBinanceClient creates a new BinanceClient.
func NewBinanceClient(logger *slog.Logger, cfg config.DataConfig) *BinanceClient {
	return &BinanceClient{
		logger:    logger,
		http:      &fasthttp.Client{Name: "emacross"},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		streamURL: strings.TrimRight(cfg.StreamURL, "/"),
		symbol:    strings.ToUpper(cfg.Symbol),
		interval:  cfg.Interval,
		limit:     cfg.Limit,
		endTime:   cfg.EndTime,
	}
}

func (b *BinanceClient) GetName() string {
	return "binance"
}

// FetchBars downloads the most recent klines, optionally ending at the configured end time.
func (b *BinanceClient) FetchBars(ctx context.Context) ([]model.Bar, error) {
	query := map[string]string{
		"symbol":   b.symbol,
		"interval": b.interval,
	}
	if b.limit > 0 {
		query["limit"] = strconv.Itoa(min(b.limit, 1000))
	}
	if b.endTime != "" {
		t, err := time.Parse(time.RFC3339, b.endTime)
		if err != nil {
			return nil, fmt.Errorf("parse end_time: %w", err)
		}
		query["endTime"] = strconv.FormatInt(t.UnixMilli(), 10)
	}

	b.logger.Info("BinanceClient: fetching klines", "symbol", b.symbol, "interval", b.interval, "limit", query["limit"])
	body, err := getBody(ctx, b.http, b.baseURL+"/api/v3/klines", query)
	if err != nil {
		return nil, err
	}
	return parseBinanceKlines(body, time.Now())
}

// parseBinanceKlines decodes the REST array-of-arrays kline format. Klines whose
// close time is after now are still forming and are left out, matching StreamBars.
func parseBinanceKlines(body []byte, now time.Time) ([]model.Bar, error) {
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, errors.New("unexpected kline response format")
	}

	rows := result.Array()
	bars := make([]model.Bar, 0, len(rows))
	for i, v := range rows {
		row := v.Array()
		if len(row) < 7 {
			return nil, fmt.Errorf("kline %d: expected at least 7 fields, got %d", i, len(row))
		}
		if time.UnixMilli(row[6].Int()).After(now) {
			continue
		}
		bars = append(bars, model.Bar{
			Timestamp: time.UnixMilli(row[0].Int()).UTC(),
			Open:      row[1].Float(),
			High:      row[2].Float(),
			Low:       row[3].Float(),
			Close:     row[4].Float(),
		})
	}
	return bars, nil
}

// StreamBars connects to the Binance kline WebSocket and sends every closed bar to barChan.
// It reconnects with exponential backoff and returns nil once ctx is cancelled.
func (b *BinanceClient) StreamBars(ctx context.Context, barChan chan<- model.Bar) error {
	wsURL := fmt.Sprintf("%s/ws/%s@kline_%s", b.streamURL, strings.ToLower(b.symbol), b.interval)
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			b.logger.Info("BinanceClient: context cancelled, shutting down")
			return nil
		}

		b.logger.Info("BinanceClient: connecting to WebSocket", "url", wsURL, "backoff", backoff)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			b.logger.Error("BinanceClient: WebSocket connection failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
				backoff = min(backoff*2, maxBackoff)
			}
			continue
		}

		// Reset backoff on successful connection
		backoff = time.Second
		b.logger.Info("BinanceClient: connected successfully")

		if err := b.readKlines(ctx, c, barChan); err != nil {
			b.logger.Error("BinanceClient: failed to read message", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
		}
	}
}

// readKlines forwards closed klines until the connection fails or ctx is done.
func (b *BinanceClient) readKlines(ctx context.Context, c *websocket.Conn, barChan chan<- model.Bar) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()
	defer c.Close()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		bar, closed, err := parseBinanceKlineEvent(message)
		if err != nil {
			b.logger.Warn("BinanceClient: failed to parse message", "error", err)
			continue
		}
		if !closed {
			continue
		}

		select {
		case barChan <- bar:
			b.logger.Debug("BinanceClient: sent bar", "time", bar.Timestamp, "close", bar.Close)
		case <-ctx.Done():
			return nil
		}
	}
}

// parseBinanceKlineEvent extracts the bar from a kline stream event and reports whether it is final.
func parseBinanceKlineEvent(message []byte) (model.Bar, bool, error) {
	if !gjson.ValidBytes(message) {
		return model.Bar{}, false, errors.New("invalid JSON")
	}
	k := gjson.GetBytes(message, "k")
	if !k.Exists() {
		return model.Bar{}, false, errors.New("missing kline payload")
	}
	return model.Bar{
		Timestamp: time.UnixMilli(k.Get("t").Int()).UTC(),
		Open:      k.Get("o").Float(),
		High:      k.Get("h").Float(),
		Low:       k.Get("l").Float(),
		Close:     k.Get("c").Float(),
	}, k.Get("x").Bool(), nil
}
