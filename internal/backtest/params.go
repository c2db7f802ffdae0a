package backtest

import (
	"fmt"

	"emacross/internal/model"
)

// ConfigurationError reports a precondition violation found before any bar is processed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Params holds the strategy settings. There are no defaults at this level.
type Params struct {
	FastSpan  int
	SlowSpan  int
	TargetPct float64
	StopPct   float64
}

// Validate checks that spans and percentages are positive.
func (p Params) Validate() error {
	if p.FastSpan <= 0 {
		return &ConfigurationError{Field: "fast_span", Reason: fmt.Sprintf("must be > 0, got %d", p.FastSpan)}
	}
	if p.SlowSpan <= 0 {
		return &ConfigurationError{Field: "slow_span", Reason: fmt.Sprintf("must be > 0, got %d", p.SlowSpan)}
	}
	return validatePercents(p.TargetPct, p.StopPct)
}

func validatePercents(targetPct, stopPct float64) error {
	if !(targetPct > 0) {
		return &ConfigurationError{Field: "target_pct", Reason: fmt.Sprintf("must be > 0, got %v", targetPct)}
	}
	if !(stopPct > 0) {
		return &ConfigurationError{Field: "stop_pct", Reason: fmt.Sprintf("must be > 0, got %v", stopPct)}
	}
	return nil
}

// ValidateOrder checks that bar timestamps are strictly increasing.
func ValidateOrder(bars []model.Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			return &ConfigurationError{
				Field:  "bars",
				Reason: fmt.Sprintf("timestamp at index %d (%s) does not follow %s", i, bars[i].Timestamp, bars[i-1].Timestamp),
			}
		}
	}
	return nil
}
