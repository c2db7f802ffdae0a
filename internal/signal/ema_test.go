package signal

import (
	"testing"
	"time"

	"emacross/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func barsFromCloses(closes ...float64) []model.Bar {
	start := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Timestamp: start.Add(time.Duration(i) * 15 * time.Minute),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
		}
	}
	return bars
}

func TestEMA(t *testing.T) {
	t.Run("seeded from first value", func(t *testing.T) {
		// span 3 -> alpha 0.5
		got := EMA([]float64{10, 20, 30}, 3)
		assert.InDeltaSlice(t, []float64{10, 15, 22.5}, got, 1e-12)
	})

	t.Run("span one tracks the series", func(t *testing.T) {
		got := EMA([]float64{1, 5, 2}, 1)
		assert.InDeltaSlice(t, []float64{1, 5, 2}, got, 1e-12)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, EMA(nil, 9))
	})
}

func TestGenerate(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Generate(nil, 9, 21))
	})

	t.Run("first bar never signals", func(t *testing.T) {
		out := Generate(barsFromCloses(100), 2, 5)
		require.Len(t, out, 1)
		assert.False(t, out[0].IsEntrySignal)
		assert.Equal(t, 100.0, out[0].EMAFast)
		assert.Equal(t, 100.0, out[0].EMASlow)
	})

	t.Run("cross up from equal", func(t *testing.T) {
		// Flat series keeps both EMAs equal, the jump pushes fast above slow.
		out := Generate(barsFromCloses(100, 100, 100, 110, 120), 2, 5)
		require.Len(t, out, 5)

		var signals []int
		for i, b := range out {
			if b.IsEntrySignal {
				signals = append(signals, i)
			}
		}
		assert.Equal(t, []int{3}, signals)
		assert.Greater(t, out[3].EMAFast, out[3].EMASlow)
	})

	t.Run("no signal while fast stays above", func(t *testing.T) {
		out := Generate(barsFromCloses(100, 110, 120, 130, 140), 2, 5)
		count := 0
		for _, b := range out {
			if b.IsEntrySignal {
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.True(t, out[1].IsEntrySignal)
	})

	t.Run("falling series never signals", func(t *testing.T) {
		out := Generate(barsFromCloses(140, 130, 120, 110, 100), 2, 5)
		for _, b := range out {
			assert.False(t, b.IsEntrySignal)
		}
	})

	t.Run("deterministic and preserves bars", func(t *testing.T) {
		bars := barsFromCloses(100, 98, 101, 97, 103, 99, 105)
		first := Generate(bars, 2, 4)
		second := Generate(bars, 2, 4)
		assert.Equal(t, first, second)
		for i := range bars {
			assert.Equal(t, bars[i], first[i].Bar)
		}
	})
}
