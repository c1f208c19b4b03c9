package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"FilingScanner/internal/domain"
	"FilingScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.FilingSource
	Analyzer   ports.Analyzer
	Repository ports.ResultRepository
	Logger     *slog.Logger
	Workers    int
}

// Outcome reports what happened to one ticker in a batch run. A non-nil
// Err means the filing could not be fetched or persisted; the analysis
// core itself never fails a filing.
type Outcome struct {
	Ticker string
	Result domain.AnalysisResult
	Err    error
}

// Pipeline implements the batch filing-analysis workflow.
type Pipeline struct {
	source     ports.FilingSource
	analyzer   ports.Analyzer
	repository ports.ResultRepository
	logger     *slog.Logger
	workers    int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{
		source:     deps.Source,
		analyzer:   deps.Analyzer,
		repository: deps.Repository,
		logger:     deps.Logger,
		workers:    workers,
	}
}

// ProcessBatch analyzes every ticker, in parallel up to the worker limit.
// One bad filing never aborts the batch: its outcome carries the error and
// the remaining tickers still run. Outcomes keep the input order.
func (p *Pipeline) ProcessBatch(ctx context.Context, tickers []string) ([]Outcome, error) {
	if p.source == nil || p.analyzer == nil {
		return nil, fmt.Errorf("pipeline is missing source or analyzer")
	}

	outcomes := make([]Outcome, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, ticker := range tickers {
		g.Go(func() error {
			outcomes[i] = p.processOne(gctx, ticker)
			return nil
		})
	}

	_ = g.Wait()

	analyzed, failed := 0, 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			continue
		}
		analyzed++
	}
	p.debug("batch complete", "tickers", len(tickers), "analyzed", analyzed, "failed", failed)

	return outcomes, nil
}

func (p *Pipeline) processOne(ctx context.Context, ticker string) Outcome {
	filing, err := p.source.FetchLatest(ctx, ticker)
	if err != nil {
		p.warn("fetch failed", "ticker", ticker, "error", err)
		return Outcome{Ticker: ticker, Err: fmt.Errorf("fetch %s: %w", ticker, err)}
	}

	result := p.analyzer.Analyze(filing)

	if p.repository != nil {
		stored, err := p.repository.AlreadyAnalyzed(ctx, []string{result.FilingID})
		if err != nil {
			p.warn("dedup lookup failed", "ticker", ticker, "error", err)
			return Outcome{Ticker: ticker, Result: result, Err: fmt.Errorf("dedup %s: %w", ticker, err)}
		}

		if !stored[result.FilingID] {
			if err := p.repository.SaveResult(ctx, result); err != nil {
				p.warn("persist failed", "ticker", ticker, "error", err)
				return Outcome{Ticker: ticker, Result: result, Err: fmt.Errorf("persist %s: %w", ticker, err)}
			}
		}
	}

	p.debug("ticker processed", "ticker", ticker, "tier", result.Tier, "score", result.Score, "evidence", len(result.Evidence))
	return Outcome{Ticker: ticker, Result: result}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
