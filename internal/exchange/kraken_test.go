package exchange

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"emacross/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ohlcBody = `{"error":[],"result":{"XXBTZEUR":[
 [1709544600,"60000.0","60100.0","59900.0","60050.0","60010.0","1.5",12],
 [1709545500,"60050.0","60300.0","60000.0","60250.0","60200.0","2.1",20],
 [1709546400,"60250.0","60260.0","60100.0","60150.0","60180.0","0.7",9]
],"last":1709546400}}`

func TestParseKrakenOHLC(t *testing.T) {
	now := time.Unix(1709547300, 0)
	bars, err := parseKrakenOHLC([]byte(ohlcBody), 15*time.Minute, now)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, time.Unix(1709544600, 0).UTC(), bars[0].Timestamp)
	assert.Equal(t, 60000.0, bars[0].Open)
	assert.Equal(t, 60100.0, bars[0].High)
	assert.Equal(t, 59900.0, bars[0].Low)
	assert.Equal(t, 60050.0, bars[0].Close)

	_, err = parseKrakenOHLC([]byte(`{"error":["EQuery:Unknown asset pair"]}`), 15*time.Minute, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown asset pair")

	_, err = parseKrakenOHLC([]byte(`{"error":[],"result":{"last":0}}`), 15*time.Minute, now)
	assert.Error(t, err)
}

func TestParseKrakenOHLC_SkipsFormingCandle(t *testing.T) {
	// The 1709546400 candle runs until 1709547300.
	bars, err := parseKrakenOHLC([]byte(ohlcBody), 15*time.Minute, time.Unix(1709547000, 0))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 60250.0, bars[1].Close)
}

func TestKrakenClient_FetchBars(t *testing.T) {
	queries := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0/public/OHLC", r.URL.Path)
		assert.Equal(t, "XBTEUR", r.URL.Query().Get("pair"))
		queries <- r.URL.Query().Get("interval")
		_, _ = io.WriteString(w, ohlcBody)
	}))
	defer srv.Close()

	client := NewKrakenClient(testLogger(), config.DataConfig{Symbol: "xbteur", Interval: "15m", Limit: 2}, srv.URL)
	bars, err := client.FetchBars(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "15", <-queries)
	require.Len(t, bars, 2)
	assert.Equal(t, 60250.0, bars[0].Close)
	assert.Equal(t, 60150.0, bars[1].Close)
}

func TestIntervalMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"5m", 5, false},
		{"15m", 15, false},
		{"4h", 240, false},
		{"1d", 1440, false},
		{"1w", 10080, false},
		{"m", 0, true},
		{"0m", 0, true},
		{"15x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := intervalMinutes(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
