package domain

import "time"

// FilingDocument is a regulatory disclosure supplied by an ingestion source.
// The text is immutable once fetched; the core never mutates it.
type FilingDocument struct {
	Identifier string
	Ticker     string
	FiledAt    time.Time
	Text       string
}

// CandidateSentence is a sentence retained by the first-pass lexical filter.
type CandidateSentence struct {
	FilingID string
	Text     string
	Start    int
	End      int
}

// Severity ranks how strongly a positive rule signals concentration risk.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// ClassificationMatch records a positive rule firing on a candidate sentence.
// Suppressed is set by the exclusion filter and removes the match from
// aggregation without discarding the record.
type ClassificationMatch struct {
	Sentence     CandidateSentence
	RuleName     string
	Severity     Severity
	Priority     int
	Percent      float64
	Suppressed   bool
	SuppressedBy string
}

// RiskTier is the discrete outcome of one filing analysis.
type RiskTier string

const (
	TierSevere   RiskTier = "severe"
	TierModerate RiskTier = "moderate"
	TierNone     RiskTier = "none"
)

// Score maps a tier to its fixed penalty value.
func (t RiskTier) Score() int {
	switch t {
	case TierSevere:
		return -5
	case TierModerate:
		return -3
	default:
		return 0
	}
}

// Evidence is one sentence justifying an assigned tier.
type Evidence struct {
	Text  string
	Start int
	End   int
}

// AnalysisResult is the immutable outcome of analyzing one filing. It holds
// no timestamps: for a fixed filing and rule-set version the result is
// always identical, which is what makes it cacheable.
type AnalysisResult struct {
	FilingID string
	Tier     RiskTier
	Score    int
	Evidence []Evidence
}
