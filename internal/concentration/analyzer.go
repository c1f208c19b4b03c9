package concentration

import (
	"log/slog"
	"strings"

	"FilingScanner/internal/domain"
	"FilingScanner/internal/ports"
	"FilingScanner/internal/rules"
)

// Detector runs the full extraction, matching, exclusion, and scoring
// pipeline for one filing. It is stateless apart from instrumentation
// counters and safe for concurrent use.
type Detector struct {
	extractor *Extractor
	engine    *Engine
	excluder  *Excluder
	logger    *slog.Logger
}

var _ ports.Analyzer = (*Detector)(nil)

// NewDetector wires the pipeline stages from one rule set.
func NewDetector(set *rules.Set, logger *slog.Logger) *Detector {
	return &Detector{
		extractor: NewExtractor(set.Triggers),
		engine:    NewEngine(set, logger),
		excluder:  NewExcluder(set, logger),
		logger:    logger,
	}
}

// Analyze classifies one filing and never fails: a filing with no usable
// text is a valid "no evidence" case and scores tier None.
func (d *Detector) Analyze(filing domain.FilingDocument) domain.AnalysisResult {
	if strings.TrimSpace(filing.Text) == "" {
		d.debug("empty filing text", "filing", filing.Identifier)
		return Score(filing.Identifier, nil)
	}

	var matches []domain.ClassificationMatch
	candidates := 0
	for sentence := range d.extractor.Candidates(filing) {
		candidates++
		matches = append(matches, d.engine.Match(sentence)...)
	}

	d.excluder.Apply(filing, matches)

	result := Score(filing.Identifier, matches)

	d.debug("filing analyzed",
		"filing", filing.Identifier,
		"candidates", candidates,
		"matches", len(matches),
		"tier", result.Tier,
	)
	return result
}

// Evaluations exposes the rule application counter for instrumentation.
func (d *Detector) Evaluations() int64 {
	return d.engine.Evaluations()
}

func (d *Detector) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}

// CachedAnalyzer memoizes Detector output through an injected cache, keyed
// by filing content and rule-set version.
type CachedAnalyzer struct {
	detector *Detector
	cache    ports.AnalysisCache
	version  string
}

var _ ports.Analyzer = (*CachedAnalyzer)(nil)

// NewCachedAnalyzer wraps a detector with a cache and the active rule-set
// version tag.
func NewCachedAnalyzer(detector *Detector, cache ports.AnalysisCache, version string) *CachedAnalyzer {
	return &CachedAnalyzer{detector: detector, cache: cache, version: version}
}

// Analyze serves from cache when the filing and rule-set version match a
// prior run, otherwise computes and stores.
func (c *CachedAnalyzer) Analyze(filing domain.FilingDocument) domain.AnalysisResult {
	if c.cache == nil {
		return c.detector.Analyze(filing)
	}
	return c.cache.GetOrCompute(filing, c.version, c.detector.Analyze)
}
