package exchange

import (
	"testing"

	"emacross/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	tests := []struct {
		cfg      config.DataConfig
		wantName string
		wantErr  bool
	}{
		{config.DataConfig{Source: "csv", Path: "bars.csv"}, "csv", false},
		{config.DataConfig{Source: "csv"}, "", true},
		{config.DataConfig{Source: "binance", Symbol: "BTCUSDT"}, "binance", false},
		{config.DataConfig{Source: "binance_stream", Limit: 50}, "binance_stream", false},
		{config.DataConfig{Source: "binance_stream"}, "", true},
		{config.DataConfig{Source: "kraken"}, "kraken", false},
		{config.DataConfig{Source: "yahoo"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Source, func(t *testing.T) {
			src, err := NewSource(testLogger(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.GetName())
		})
	}
}
