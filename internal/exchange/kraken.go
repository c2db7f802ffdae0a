package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"emacross/internal/config"
	"emacross/internal/model"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const krakenBaseURL = "https://api.kraken.com"

// KrakenClient implements BarSource using the Kraken public OHLC endpoint.
type KrakenClient struct {
	logger   *slog.Logger
	http     *fasthttp.Client
	baseURL  string
	pair     string
	interval string
	limit    int
}

// NewKrakenClient creates a new KrakenClient. An empty base URL selects the public API.
func NewKrakenClient(logger *slog.Logger, cfg config.DataConfig, baseURL string) *KrakenClient {
	if baseURL == "" {
		baseURL = krakenBaseURL
	}
	return &KrakenClient{
		logger:   logger,
		http:     &fasthttp.Client{Name: "emacross"},
		baseURL:  strings.TrimRight(baseURL, "/"),
		pair:     strings.ToUpper(cfg.Symbol),
		interval: cfg.Interval,
		limit:    cfg.Limit,
	}
}

func (k *KrakenClient) GetName() string {
	return "kraken"
}

// FetchBars downloads OHLC data and keeps the last limit bars.
func (k *KrakenClient) FetchBars(ctx context.Context) ([]model.Bar, error) {
	minutes, err := intervalMinutes(k.interval)
	if err != nil {
		return nil, err
	}

	k.logger.Info("KrakenClient: fetching OHLC", "pair", k.pair, "interval", minutes)
	body, err := getBody(ctx, k.http, k.baseURL+"/0/public/OHLC", map[string]string{
		"pair":     k.pair,
		"interval": strconv.Itoa(minutes),
	})
	if err != nil {
		return nil, err
	}

	bars, err := parseKrakenOHLC(body, time.Duration(minutes)*time.Minute, time.Now())
	if err != nil {
		return nil, err
	}
	if k.limit > 0 && len(bars) > k.limit {
		bars = bars[len(bars)-k.limit:]
	}
	return bars, nil
}

// parseKrakenOHLC decodes {"error":[],"result":{"<pair>":[[time,o,h,l,c,vwap,vol,count],...],"last":n}}.
// Kraken always returns the current, uncommitted candle last; rows whose
// interval has not ended by now are skipped.
func parseKrakenOHLC(body []byte, interval time.Duration, now time.Time) ([]model.Bar, error) {
	if errs := gjson.GetBytes(body, "error").Array(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.String()
		}
		return nil, fmt.Errorf("kraken: %s", strings.Join(msgs, "; "))
	}

	var bars []model.Bar
	var found bool
	gjson.GetBytes(body, "result").ForEach(func(key, value gjson.Result) bool {
		if key.String() == "last" || !value.IsArray() {
			return true
		}
		found = true
		for _, v := range value.Array() {
			row := v.Array()
			if len(row) < 5 {
				continue
			}
			open := time.Unix(row[0].Int(), 0).UTC()
			if open.Add(interval).After(now) {
				continue
			}
			bars = append(bars, model.Bar{
				Timestamp: open,
				Open:      row[1].Float(),
				High:      row[2].Float(),
				Low:       row[3].Float(),
				Close:     row[4].Float(),
			})
		}
		return false
	})
	if !found {
		return nil, fmt.Errorf("kraken: no OHLC series in response")
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}

// intervalMinutes converts 1m/15m/1h/1d style intervals into minutes.
func intervalMinutes(interval string) (int, error) {
	if len(interval) < 2 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
	switch interval[len(interval)-1] {
	case 'm':
		return n, nil
	case 'h':
		return n * 60, nil
	case 'd':
		return n * 60 * 24, nil
	case 'w':
		return n * 60 * 24 * 7, nil
	default:
		return 0, fmt.Errorf("invalid interval %q", interval)
	}
}
