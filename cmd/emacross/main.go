package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"emacross/internal/backtest"
	"emacross/internal/config"
	"emacross/internal/database"
	"emacross/internal/exchange"
	"emacross/internal/report"
	"emacross/internal/saver"
)

func main() {
	configPath := flag.String("config", ".", "Directory containing config.yaml")
	cumulative := flag.Bool("cumulative", false, "Print the cumulative profit series after the report")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	logger := cfg.Log.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, &cfg, *cumulative); err != nil {
		logger.Error("Backtest failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg *config.Config, cumulative bool) error {
	loc, err := report.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return err
	}

	var exporter saver.TradeSaver
	if cfg.Output.Format != "" {
		if exporter = saver.NewTradeSaver(cfg.Output.Format); exporter == nil {
			return fmt.Errorf("unknown output format: %s", cfg.Output.Format)
		}
	}

	source, err := exchange.NewSource(logger, cfg.Data)
	if err != nil {
		return err
	}

	var repo database.Repository
	if cfg.Database.Enabled {
		pg, err := database.NewPostgresRepository(ctx, cfg.Database.ConnString())
		if err != nil {
			return err
		}
		defer pg.Close()
		repo = pg
	}

	engine := backtest.NewEngine(logger, repo, cfg)
	if err := engine.Prepare(ctx); err != nil {
		return err
	}

	bars, err := source.FetchBars(ctx)
	if err != nil {
		return fmt.Errorf("load bars from %s: %w", source.GetName(), err)
	}

	result, err := engine.Run(ctx, bars)
	if result == nil {
		return err
	}
	if err != nil {
		// Storage failed; still show what was computed.
		logger.Warn("Reporting unsaved result", "error", err)
	}

	opts := report.Options{Location: loc, Currency: cfg.Report.Currency}
	if err := report.Render(os.Stdout, result.Trades, opts); err != nil {
		return err
	}
	if cumulative && len(result.Trades) > 0 {
		fmt.Fprintln(os.Stdout, "\nCumulative Profit")
		if err := report.RenderCumulative(os.Stdout, result.Trades, opts); err != nil {
			return err
		}
	}

	if exporter != nil {
		path := cfg.Output.Path
		if path == "" {
			path = "trades." + exporter.Extension()
		}
		if err := exporter.Save(result.Trades, path); err != nil {
			return fmt.Errorf("export trades: %w", err)
		}
		logger.Info("Trades exported", "path", path, "count", len(result.Trades))
	}
	return err
}
