package database

import (
	"context"

	"emacross/internal/model"
)

// Repository defines the standard interface for database operations.
type Repository interface {
	Migrate(ctx context.Context) error
	LogRun(ctx context.Context, run model.BacktestRun) (int64, error)
	LogTrades(ctx context.Context, runID int64, trades []model.Trade) error
}
