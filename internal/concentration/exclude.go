package concentration

import (
	"log/slog"

	"FilingScanner/internal/domain"
	"FilingScanner/internal/rules"
)

// contextRadius is how many characters around the sentence an exclusion
// rule with context scope gets to see. Wide enough to cover the adjacent
// sentence on either side of an average disclosure.
const contextRadius = 240

// Excluder applies the false-positive suppression rules. It runs strictly
// after the positive matcher and can only suppress, never add, a match.
type Excluder struct {
	rules  []rules.Rule
	logger *slog.Logger
}

// NewExcluder wires the exclusion rules of a rule set.
func NewExcluder(set *rules.Set, logger *slog.Logger) *Excluder {
	return &Excluder{rules: set.Exclusion, logger: logger}
}

// Apply marks matches as suppressed in place. Sentence-scoped rules see only
// the matched sentence; context-scoped rules also see a window of the filing
// text around it, so header and disclaimer signals next to the sentence
// still disqualify it.
func (x *Excluder) Apply(filing domain.FilingDocument, matches []domain.ClassificationMatch) {
	for i := range matches {
		if matches[i].Suppressed {
			continue
		}
		if name := x.firingRule(filing, matches[i].Sentence); name != "" {
			matches[i].Suppressed = true
			matches[i].SuppressedBy = name
		}
	}
}

func (x *Excluder) firingRule(filing domain.FilingDocument, sentence domain.CandidateSentence) string {
	var window string
	for _, rule := range x.rules {
		text := sentence.Text
		if rule.Scope == rules.ScopeContext {
			if window == "" {
				window = contextWindow(filing.Text, sentence.Start, sentence.End)
			}
			text = window
		}

		if x.matches(rule, text) {
			return rule.Name
		}
	}
	return ""
}

func (x *Excluder) matches(rule rules.Rule, text string) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			if x.logger != nil {
				x.logger.Warn("exclusion evaluation failed, skipping rule for sentence",
					"rule", rule.Name, "panic", r)
			}
			fired = false
		}
	}()
	return rule.Expr.MatchString(text)
}

func contextWindow(text string, start, end int) string {
	s := start - contextRadius
	if s < 0 {
		s = 0
	}
	e := end + contextRadius
	if e > len(text) {
		e = len(text)
	}
	if s >= e {
		return ""
	}
	return text[s:e]
}
