package model

import "time"

// Bar represents one OHLC price observation for a fixed interval.
type Bar struct {
	Timestamp time.Time `json:"timestamp" parquet:"timestamp"`
	Open      float64   `json:"open" parquet:"open"`
	High      float64   `json:"high" parquet:"high"`
	Low       float64   `json:"low" parquet:"low"`
	Close     float64   `json:"close" parquet:"close"`
}

// AnnotatedBar is a Bar with the EMA values and entry signal derived from it.
type AnnotatedBar struct {
	Bar
	EMAFast       float64 `json:"ema_fast"`
	EMASlow       float64 `json:"ema_slow"`
	IsEntrySignal bool    `json:"is_entry_signal"`
}

// ExitReason tells which level closed a trade.
type ExitReason string

const (
	ExitTarget ExitReason = "target"
	ExitStop   ExitReason = "stop"
)

// Trade represents a completed round-trip position.
type Trade struct {
	ID         int64      `db:"id" json:"-" parquet:"-"`
	RunID      int64      `db:"run_id" json:"-" parquet:"-"`
	EntryTime  time.Time  `db:"entry_time" json:"entry_time" parquet:"entry_time"`
	ExitTime   time.Time  `db:"exit_time" json:"exit_time" parquet:"exit_time"`
	EntryPrice float64    `db:"entry_price" json:"entry_price" parquet:"entry_price"`
	ExitPrice  float64    `db:"exit_price" json:"exit_price" parquet:"exit_price"`
	Profit     float64    `db:"profit" json:"profit" parquet:"profit"`
	Reason     ExitReason `db:"exit_reason" json:"exit_reason" parquet:"exit_reason"`
}

// BacktestRun describes one backtest invocation to be logged.
type BacktestRun struct {
	ID         int64     `db:"id"`
	Timestamp  time.Time `db:"timestamp"`
	Symbol     string    `db:"symbol"`
	Interval   string    `db:"interval"`
	FastSpan   int       `db:"fast_span"`
	SlowSpan   int       `db:"slow_span"`
	TargetPct  float64   `db:"target_pct"`
	StopPct    float64   `db:"stop_pct"`
	BarCount   int       `db:"bar_count"`
	TradeCount int       `db:"trade_count"`
}
