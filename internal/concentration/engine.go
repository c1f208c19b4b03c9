package concentration

import (
	"log/slog"
	"regexp"
	"strconv"
	"sync/atomic"

	"FilingScanner/internal/domain"
	"FilingScanner/internal/rules"
)

var percentExpr = regexp.MustCompile(`(\d{1,3}(?:\.\d{1,2})?)\s*%`)

// Engine evaluates the positive rule set against candidate sentences.
// Rules are independent: one sentence may produce several matches.
type Engine struct {
	rules  []rules.Rule
	logger *slog.Logger

	// evaluations counts individual rule applications; the cached analyzer
	// tests rely on it to prove a cache hit ran zero evaluations.
	evaluations atomic.Int64
}

// NewEngine wires the positive rules of a rule set.
func NewEngine(set *rules.Set, logger *slog.Logger) *Engine {
	return &Engine{rules: set.Positive, logger: logger}
}

// Match returns every positive rule firing on the candidate sentence. A rule
// that panics on pathological input is skipped for this sentence only;
// remaining rules still run.
func (e *Engine) Match(sentence domain.CandidateSentence) []domain.ClassificationMatch {
	var matches []domain.ClassificationMatch
	for _, rule := range e.rules {
		e.evaluations.Add(1)
		groups, ok := e.apply(rule, sentence.Text)
		if !ok {
			continue
		}

		matches = append(matches, domain.ClassificationMatch{
			Sentence: sentence,
			RuleName: rule.Name,
			Severity: rule.Severity,
			Priority: rule.Priority,
			Percent:  extractPercent(groups, sentence.Text),
		})
	}
	return matches
}

// Evaluations reports the total number of rule applications so far.
func (e *Engine) Evaluations() int64 {
	return e.evaluations.Load()
}

func (e *Engine) apply(rule rules.Rule, text string) (groups []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Warn("rule evaluation failed, skipping rule for sentence",
					"rule", rule.Name, "panic", r)
			}
			groups, ok = nil, false
		}
	}()

	groups = rule.Expr.FindStringSubmatch(text)
	return groups, groups != nil
}

// extractPercent pulls a percentage figure out of the rule's capture group,
// falling back to any percentage in the sentence. A missing figure is fine:
// qualitative statements match without one and Percent stays zero.
func extractPercent(groups []string, sentence string) float64 {
	if len(groups) > 1 && groups[1] != "" {
		if v, err := strconv.ParseFloat(groups[1], 64); err == nil {
			return v
		}
	}
	if m := percentExpr.FindStringSubmatch(sentence); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v
		}
	}
	return 0
}
