package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Strategy StrategyConfig
	Data     DataConfig
	Database DatabaseConfig
	Output   OutputConfig
	Report   ReportConfig
	Log      LogConfig
}

// StrategyConfig defines the crossover and exit settings.
type StrategyConfig struct {
	FastSpan      int     `mapstructure:"fast_span"`
	SlowSpan      int     `mapstructure:"slow_span"`
	TargetPct     float64 `mapstructure:"target_pct"`
	StopPct       float64 `mapstructure:"stop_pct"`
	ValidateOrder bool    `mapstructure:"validate_order"`
}

// DataConfig defines where bars are loaded from.
type DataConfig struct {
	Source    string
	Path      string
	Symbol    string
	Interval  string
	Limit     int
	EndTime   string `mapstructure:"end_time"`
	BaseURL   string `mapstructure:"base_url"`
	StreamURL string `mapstructure:"stream_url"`
	KrakenURL string `mapstructure:"kraken_url"`
}

// DatabaseConfig defines the database connection settings.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OutputConfig defines where the trade list is exported.
type OutputConfig struct {
	Format string
	Path   string
}

// ReportConfig defines how results are displayed.
type ReportConfig struct {
	Timezone string
	Currency string
}

// LogConfig defines the logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// setDefaults registers every key. Unmarshal only sees environment
// overrides for keys viper already knows about.
func setDefaults(v *viper.Viper) {
	v.SetDefault("strategy.fast_span", 9)
	v.SetDefault("strategy.slow_span", 21)
	v.SetDefault("strategy.target_pct", 3.95)
	v.SetDefault("strategy.stop_pct", 0.8)
	v.SetDefault("strategy.validate_order", true)

	v.SetDefault("data.source", "csv")
	v.SetDefault("data.path", "")
	v.SetDefault("data.symbol", "BTCUSDT")
	v.SetDefault("data.interval", "15m")
	v.SetDefault("data.limit", 1000)
	v.SetDefault("data.end_time", "")
	v.SetDefault("data.base_url", "https://api.binance.com")
	v.SetDefault("data.stream_url", "wss://stream.binance.com:9443")
	v.SetDefault("data.kraken_url", "https://api.kraken.com")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("output.format", "")
	v.SetDefault("output.path", "")

	v.SetDefault("report.timezone", "Asia/Kolkata")
	v.SetDefault("report.currency", "₹")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error; defaults and environment still apply.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

// ConnString builds the Postgres connection URL.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// ParseLevel converts debug|info|warn|error to a slog.Level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the application logger writing to stderr.
func (l LogConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(l.Level)}
	if strings.EqualFold(l.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
