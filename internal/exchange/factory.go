package exchange

import (
	"fmt"
	"log/slog"

	"emacross/internal/config"
)

// NewSource creates a bar source based on the configured data source name.
func NewSource(logger *slog.Logger, cfg config.DataConfig) (BarSource, error) {
	switch cfg.Source {
	case "csv":
		if cfg.Path == "" {
			return nil, fmt.Errorf("csv source requires data.path")
		}
		return NewCSVSource(logger, cfg.Path), nil
	case "binance":
		return NewBinanceClient(logger, cfg), nil
	case "binance_stream":
		if cfg.Limit <= 0 {
			return nil, fmt.Errorf("binance_stream source requires data.limit > 0")
		}
		return NewStreamSource(logger, NewBinanceClient(logger, cfg), cfg.Limit), nil
	case "kraken":
		return NewKrakenClient(logger, cfg, cfg.KrakenURL), nil
	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Source)
	}
}
