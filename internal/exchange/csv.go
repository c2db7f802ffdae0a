package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"emacross/internal/model"
)

// CSVSource reads bars from a file with the columns timestamp,open,high,low,close.
// Timestamps are RFC3339 or unix milliseconds. A header row is optional.
type CSVSource struct {
	logger *slog.Logger
	path   string
}

// NewCSVSource creates a new CSVSource.
func NewCSVSource(logger *slog.Logger, path string) *CSVSource {
	return &CSVSource{logger: logger, path: path}
}

func (s *CSVSource) GetName() string {
	return "csv"
}

// FetchBars loads the whole file.
func (s *CSVSource) FetchBars(ctx context.Context) ([]model.Bar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	bars, err := ReadBarsCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Info("CSVSource: loaded bars", "path", s.path, "count", len(bars))
	return bars, nil
}

// ReadBarsCSV parses bars from r.
func ReadBarsCSV(ctx context.Context, r io.Reader) ([]model.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var bars []model.Bar
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: expected 5 columns, got %d", line, len(rec))
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "timestamp") {
			continue
		}

		bar, err := parseBarRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRecord(rec []string) (model.Bar, error) {
	ts, err := parseTimestamp(strings.TrimSpace(rec[0]))
	if err != nil {
		return model.Bar{}, err
	}

	var prices [4]float64
	for i := range prices {
		prices[i], err = strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("column %d: %w", i+2, err)
		}
	}
	return model.Bar{
		Timestamp: ts,
		Open:      prices[0],
		High:      prices[1],
		Low:       prices[2],
		Close:     prices[3],
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: expected RFC3339 or unix milliseconds", s)
	}
	return t, nil
}
