package saver

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"emacross/internal/model"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrades() []model.Trade {
	entry := time.Date(2024, 3, 4, 4, 0, 0, 0, time.UTC)
	return []model.Trade{
		{EntryTime: entry, ExitTime: entry.Add(time.Hour), EntryPrice: 100, ExitPrice: 103.95, Profit: 3.95, Reason: model.ExitTarget},
		{EntryTime: entry.Add(2 * time.Hour), ExitTime: entry.Add(150 * time.Minute), EntryPrice: 101, ExitPrice: 100.192, Profit: -0.81, Reason: model.ExitStop},
	}
}

func TestNewTradeSaver(t *testing.T) {
	assert.Equal(t, "csv", NewTradeSaver("CSV").Extension())
	assert.Equal(t, "json", NewTradeSaver(" json").Extension())
	assert.Equal(t, "parquet", NewTradeSaver("parquet").Extension())
	assert.Nil(t, NewTradeSaver("xlsx"))
}

func TestCSVSaver_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, CSVSaver{}.Save(sampleTrades(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"entry_time", "exit_time", "entry_price", "exit_price", "profit", "exit_reason"}, rows[0])
	assert.Equal(t, []string{"2024-03-04T04:00:00Z", "2024-03-04T05:00:00Z", "100", "103.95", "3.95", "target"}, rows[1])
	assert.Equal(t, "-0.81", rows[2][4])
	assert.Equal(t, "stop", rows[2][5])
}

func TestJSONSaver_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trades.json")
	require.NoError(t, JSONSaver{}.Save(sampleTrades(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, 3.95, got[0]["profit"])
	assert.Equal(t, "target", got[0]["exit_reason"])
	assert.NotContains(t, got[0], "ID")

	// No trades is still a valid, empty document.
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, JSONSaver{}.Save(nil, empty))
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestParquetSaver_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.parquet")
	trades := sampleTrades()
	require.NoError(t, ParquetSaver{}.Save(trades, path))

	got, err := parquet.ReadFile[model.Trade](path)
	require.NoError(t, err)
	require.Len(t, got, len(trades))
	for i := range trades {
		assert.True(t, trades[i].EntryTime.Equal(got[i].EntryTime))
		assert.Equal(t, trades[i].ExitPrice, got[i].ExitPrice)
		assert.Equal(t, trades[i].Profit, got[i].Profit)
		assert.Equal(t, trades[i].Reason, got[i].Reason)
	}
}
