package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"FilingScanner/internal/domain"
	"FilingScanner/internal/ports"
	"FilingScanner/internal/scanner"
)

// RegistrySource implements FilingSource via a registered scanner strategy.
type RegistrySource struct {
	registry *scanner.Registry
	source   string
	options  map[string]string
	logger   *slog.Logger
}

var _ ports.FilingSource = (*RegistrySource)(nil)

// NewRegistrySource wires the scanner registry with the configured source name.
func NewRegistrySource(reg *scanner.Registry, source string, options map[string]string, log *slog.Logger) *RegistrySource {
	return &RegistrySource{
		registry: reg,
		source:   source,
		options:  options,
		logger:   log,
	}
}

// FetchLatest resolves the configured strategy and fetches one filing.
func (s *RegistrySource) FetchLatest(ctx context.Context, ticker string) (domain.FilingDocument, error) {
	if s.registry == nil {
		return domain.FilingDocument{}, fmt.Errorf("scanner registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.source)
	if err != nil {
		return domain.FilingDocument{}, fmt.Errorf("source %s: %w", s.source, err)
	}

	s.debug("fetch filing", "source", s.source, "ticker", ticker)

	filing, err := strategy.Fetch(ctx, scanner.Request{Ticker: ticker, Options: s.options})
	if err != nil {
		return domain.FilingDocument{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	s.debug("filing fetched", "ticker", ticker, "filing", filing.Identifier, "bytes", len(filing.Text))
	return filing, nil
}

func (s *RegistrySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
