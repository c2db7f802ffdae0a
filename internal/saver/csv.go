package saver

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"emacross/internal/model"
)

// CSVSaver writes trades as CSV with a header row.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(trades []model.Trade, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	if err := w.Write([]string{"entry_time", "exit_time", "entry_price", "exit_price", "profit", "exit_reason"}); err != nil {
		return err
	}
	for _, t := range trades {
		if err := w.Write([]string{
			t.EntryTime.Format(time.RFC3339),
			t.ExitTime.Format(time.RFC3339),
			floatStr(t.EntryPrice),
			floatStr(t.ExitPrice),
			strconv.FormatFloat(t.Profit, 'f', 2, 64),
			string(t.Reason),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
