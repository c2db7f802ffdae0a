package backtest

import (
	"time"

	"emacross/internal/model"

	"github.com/shopspring/decimal"
)

// ProfitPlaces is the number of decimal places a trade's profit is rounded to.
const ProfitPlaces = 2

// Position is the single open long position. A nil *Position means flat.
type Position struct {
	EntryTime   time.Time
	EntryPrice  float64
	TargetPrice float64
	StopPrice   float64
}

func openPosition(bar model.AnnotatedBar, targetPct, stopPct float64) *Position {
	return &Position{
		EntryTime:   bar.Timestamp,
		EntryPrice:  bar.Close,
		TargetPrice: bar.Close * (1 + targetPct/100),
		StopPrice:   bar.Close * (1 - stopPct/100),
	}
}

// close builds the trade for an exit at price on the given bar.
func (p *Position) close(bar model.AnnotatedBar, price float64, reason model.ExitReason) model.Trade {
	return model.Trade{
		EntryTime:  p.EntryTime,
		ExitTime:   bar.Timestamp,
		EntryPrice: p.EntryPrice,
		ExitPrice:  price,
		Profit:     RoundProfit(price - p.EntryPrice),
		Reason:     reason,
	}
}

// RoundProfit rounds a price difference to ProfitPlaces decimals. The exact
// binary value is rounded with ties to even, so 2.675 (stored as 2.67499...)
// becomes 2.67 and 0.125 becomes 0.12.
func RoundProfit(v float64) float64 {
	return decimal.NewFromFloatWithExponent(v, -20).RoundBank(ProfitPlaces).InexactFloat64()
}

// Simulate walks the annotated bars and returns the closed trades in exit order.
// A position still open when the bars run out is dropped, not reported.
func Simulate(bars []model.AnnotatedBar, targetPct, stopPct float64) ([]model.Trade, error) {
	trades, _, err := Replay(bars, targetPct, stopPct)
	return trades, err
}

// Replay is Simulate that also returns the position left open at the end of
// the series, or nil if the simulation finished flat.
func Replay(bars []model.AnnotatedBar, targetPct, stopPct float64) ([]model.Trade, *Position, error) {
	if err := validatePercents(targetPct, stopPct); err != nil {
		return nil, nil, err
	}

	trades := []model.Trade{}
	var pos *Position

	// Index 0 can never carry an entry signal.
	for i := 1; i < len(bars); i++ {
		bar := bars[i]

		if pos == nil {
			if bar.IsEntrySignal {
				// The entry bar is not checked for an exit.
				pos = openPosition(bar, targetPct, stopPct)
			}
			continue
		}

		// Target wins when both levels are breached within one bar.
		switch {
		case bar.High >= pos.TargetPrice:
			trades = append(trades, pos.close(bar, pos.TargetPrice, model.ExitTarget))
			pos = nil
		case bar.Low <= pos.StopPrice:
			trades = append(trades, pos.close(bar, pos.StopPrice, model.ExitStop))
			pos = nil
		}
	}

	return trades, pos, nil
}
