package database

import (
	"context"
	"fmt"

	"emacross/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS backtest_runs (
	id SERIAL PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	symbol VARCHAR(32) NOT NULL,
	interval VARCHAR(8) NOT NULL,
	fast_span INTEGER NOT NULL,
	slow_span INTEGER NOT NULL,
	target_pct NUMERIC(10, 4) NOT NULL,
	stop_pct NUMERIC(10, 4) NOT NULL,
	bar_count INTEGER NOT NULL,
	trade_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS backtest_trades (
	id SERIAL PRIMARY KEY,
	run_id INTEGER NOT NULL REFERENCES backtest_runs(id) ON DELETE CASCADE,
	entry_time TIMESTAMPTZ NOT NULL,
	exit_time TIMESTAMPTZ NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price DOUBLE PRECISION NOT NULL,
	profit NUMERIC(20, 2) NOT NULL,
	exit_reason VARCHAR(8) NOT NULL
);`

// PostgresRepository stores backtest runs and their trades in Postgres.
type PostgresRepository struct {
	Pool *pgxpool.Pool
}

// NewPostgresRepository connects a pool to the given connection string.
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresRepository{Pool: pool}, nil
}

// Close releases the pool.
func (r *PostgresRepository) Close() {
	r.Pool.Close()
}

// Migrate creates the tables if they do not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// LogRun inserts a run and returns its id.
func (r *PostgresRepository) LogRun(ctx context.Context, run model.BacktestRun) (int64, error) {
	var id int64
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO backtest_runs (timestamp, symbol, interval, fast_span, slow_span, target_pct, stop_pct, bar_count, trade_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		run.Timestamp, run.Symbol, run.Interval, run.FastSpan, run.SlowSpan,
		run.TargetPct, run.StopPct, run.BarCount, run.TradeCount,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// LogTrades inserts all trades of a run in a single batch.
func (r *PostgresRepository) LogTrades(ctx context.Context, runID int64, trades []model.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range trades {
		batch.Queue(`
			INSERT INTO backtest_trades (run_id, entry_time, exit_time, entry_price, exit_price, profit, exit_reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			runID, t.EntryTime, t.ExitTime, t.EntryPrice, t.ExitPrice, t.Profit, string(t.Reason),
		)
	}

	if err := r.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert trades for run %d: %w", runID, err)
	}
	return nil
}

// ListTrades returns the trades of a run ordered by exit time.
func (r *PostgresRepository) ListTrades(ctx context.Context, runID int64) ([]model.Trade, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, run_id, entry_time, exit_time, entry_price, exit_price, profit::float8, exit_reason
		FROM backtest_trades
		WHERE run_id = $1
		ORDER BY exit_time, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}

	trades, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Trade])
	if err != nil {
		return nil, fmt.Errorf("scan trades: %w", err)
	}
	return trades, nil
}
