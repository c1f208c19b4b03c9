package ports

import (
	"context"
	"time"

	"FilingScanner/internal/domain"
)

// FilingSource materializes filing documents from upstream providers. The
// analysis core itself never performs network access.
type FilingSource interface {
	FetchLatest(ctx context.Context, ticker string) (domain.FilingDocument, error)
}

// Analyzer classifies one filing. It always returns a result: empty or
// malformed text yields a None-tier result rather than an error.
type Analyzer interface {
	Analyze(filing domain.FilingDocument) domain.AnalysisResult
}

// AnalysisCache memoizes analysis output per (filing, rule-set version).
// Implementations must be safe for concurrent use and must never serve a
// partially written entry; Reset exists so tests can start clean.
type AnalysisCache interface {
	GetOrCompute(filing domain.FilingDocument, version string, compute func(domain.FilingDocument) domain.AnalysisResult) domain.AnalysisResult
	Reset()
}

// Scheduler controls when recurring scans execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// ResultRepository persists analysis results for reporting and dedup.
type ResultRepository interface {
	AlreadyAnalyzed(ctx context.Context, filingIDs []string) (map[string]bool, error)
	SaveResult(ctx context.Context, result domain.AnalysisResult) error
}
