package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"emacross/internal/config"
	"emacross/internal/database"
	"emacross/internal/model"
	"emacross/internal/signal"
)

// Engine runs the crossover backtest over a bar series and logs the outcome.
type Engine struct {
	logger *slog.Logger
	repo   database.Repository
	cfg    *config.Config
}

// Result is the outcome of one backtest run.
type Result struct {
	Run    model.BacktestRun
	Bars   []model.AnnotatedBar
	Trades []model.Trade
	// Open is the position still held when the data ran out. It produces no trade.
	Open *Position
}

// NewEngine creates a new Engine. repo may be nil to skip persistence.
func NewEngine(logger *slog.Logger, repo database.Repository, cfg *config.Config) *Engine {
	return &Engine{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
	}
}

// Params returns the strategy parameters from the configuration.
func (e *Engine) Params() Params {
	return Params{
		FastSpan:  e.cfg.Strategy.FastSpan,
		SlowSpan:  e.cfg.Strategy.SlowSpan,
		TargetPct: e.cfg.Strategy.TargetPct,
		StopPct:   e.cfg.Strategy.StopPct,
	}
}

// Prepare makes the repository ready for writes. It is a no-op without one.
func (e *Engine) Prepare(ctx context.Context) error {
	if e.repo == nil {
		return nil
	}
	if err := e.repo.Migrate(ctx); err != nil {
		e.logger.Error("Failed to migrate repository", "error", err)
		return err
	}
	return nil
}

// Run validates the inputs, generates signals, simulates trades and stores them.
// On a storage failure the computed result is returned together with the error.
func (e *Engine) Run(ctx context.Context, bars []model.Bar) (*Result, error) {
	params := e.Params()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if e.cfg.Strategy.ValidateOrder {
		if err := ValidateOrder(bars); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Starting backtest",
		"symbol", e.cfg.Data.Symbol,
		"bars", len(bars),
		"fastSpan", params.FastSpan,
		"slowSpan", params.SlowSpan,
		"targetPct", params.TargetPct,
		"stopPct", params.StopPct,
	)

	annotated := signal.Generate(bars, params.FastSpan, params.SlowSpan)
	trades, open, err := Replay(annotated, params.TargetPct, params.StopPct)
	if err != nil {
		return nil, err
	}

	signals := 0
	for _, b := range annotated {
		if b.IsEntrySignal {
			signals++
		}
	}
	e.logger.Info("Backtest finished", "signals", signals, "trades", len(trades))
	if open != nil {
		e.logger.Warn("Open position dropped at end of data",
			"entryTime", open.EntryTime,
			"entryPrice", open.EntryPrice,
		)
	}

	result := &Result{
		Run: model.BacktestRun{
			Timestamp:  time.Now().UTC(),
			Symbol:     e.cfg.Data.Symbol,
			Interval:   e.cfg.Data.Interval,
			FastSpan:   params.FastSpan,
			SlowSpan:   params.SlowSpan,
			TargetPct:  params.TargetPct,
			StopPct:    params.StopPct,
			BarCount:   len(bars),
			TradeCount: len(trades),
		},
		Bars:   annotated,
		Trades: trades,
		Open:   open,
	}

	if e.repo == nil {
		return result, nil
	}

	// Log the run and its trades
	runID, err := e.repo.LogRun(ctx, result.Run)
	if err != nil {
		e.logger.Error("Failed to log backtest run", "error", err)
		return result, fmt.Errorf("log run: %w", err)
	}
	result.Run.ID = runID
	for i := range result.Trades {
		result.Trades[i].RunID = runID
	}

	if err := e.repo.LogTrades(ctx, runID, result.Trades); err != nil {
		e.logger.Error("Failed to log trades", "runID", runID, "error", err)
		return result, fmt.Errorf("log trades: %w", err)
	}
	return result, nil
}
