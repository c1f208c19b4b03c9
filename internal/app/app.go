package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"FilingScanner/internal/cache"
	"FilingScanner/internal/concentration"
	"FilingScanner/internal/config"
	"FilingScanner/internal/infrastructure/ingest"
	"FilingScanner/internal/infrastructure/scheduler"
	"FilingScanner/internal/infrastructure/storage"
	"FilingScanner/internal/logging"
	"FilingScanner/internal/ports"
	"FilingScanner/internal/rules"
	"FilingScanner/internal/scanner"
	"FilingScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance. A rule table that fails to
// load is fatal: starting without rules would silently disable detection.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	ruleSet, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	baseLogger.Info("rule set loaded",
		"version", ruleSet.Version,
		"positive", len(ruleSet.Positive),
		"exclusion", len(ruleSet.Exclusion),
	)

	registry := scanner.NewRegistry()
	registry.Register(ingest.NewEdgarClient(nil, cfg.Ingestion))

	source := ingest.NewRegistrySource(registry, cfg.Ingestion.Source, nil, baseLogger.With("component", "source"))

	detector := concentration.NewDetector(ruleSet, baseLogger.With("component", "detector"))
	analyzer := concentration.NewCachedAnalyzer(detector, cache.New(), ruleSet.Version)

	var repository ports.ResultRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repository = storage.NewPostgresRepository(db)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Analyzer:   analyzer,
		Repository: repository,
		Logger:     baseLogger.With("component", "pipeline"),
		Workers:    cfg.Analysis.Workers,
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}, nil
}

// Run executes one batch over the configured tickers, or keeps re-running
// it on the configured interval until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if len(a.cfg.Analysis.Tickers) == 0 {
		a.logger.Info("no tickers configured, nothing to do")
		return nil
	}

	if a.cfg.Analysis.Interval != "" {
		return a.runRecurring(ctx)
	}

	outcomes, err := a.pipeline.ProcessBatch(ctx, a.cfg.Analysis.Tickers)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		if o.Err != nil {
			a.logger.Error("ticker failed", "ticker", o.Ticker, "error", o.Err)
			continue
		}
		a.logger.Info("ticker scored",
			"ticker", o.Ticker,
			"tier", o.Result.Tier,
			"score", o.Result.Score,
			"evidence", len(o.Result.Evidence),
		)
	}

	return nil
}

func (a *Application) runRecurring(ctx context.Context) error {
	interval, err := time.ParseDuration(a.cfg.Analysis.Interval)
	if err != nil {
		return fmt.Errorf("parse analysis interval: %w", err)
	}

	driver := scheduler.NewIntervalScheduler(interval)
	recurring := usecase.NewScheduler(driver, a.pipeline, a.cfg.Analysis.Tickers)

	if err := recurring.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("recurring scan started", "interval", interval)

	<-ctx.Done()
	return recurring.Stop(context.Background())
}
