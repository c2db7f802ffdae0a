package saver

import (
	"strings"

	"emacross/internal/model"
)

// TradeSaver writes a trade list to a file in one format.
type TradeSaver interface {
	Save(trades []model.Trade, path string) error
	Extension() string
}

// NewTradeSaver creates an implementation by format (csv, json, parquet).
// Returns nil if the format is not supported.
func NewTradeSaver(format string) TradeSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}
