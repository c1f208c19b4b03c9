package concentration

import (
	"sort"

	"FilingScanner/internal/domain"
)

// evidenceCap bounds how many supporting sentences a result carries.
const evidenceCap = 3

// Score reduces the classified matches for one filing to exactly one tier
// with its supporting evidence. Suppressed matches contribute nothing.
func Score(filingID string, matches []domain.ClassificationMatch) domain.AnalysisResult {
	surviving := make([]domain.ClassificationMatch, 0, len(matches))
	for _, m := range matches {
		if !m.Suppressed {
			surviving = append(surviving, m)
		}
	}

	tier := domain.TierNone
	for _, m := range surviving {
		if m.Severity == domain.SeverityHigh {
			tier = domain.TierSevere
			break
		}
		tier = domain.TierModerate
	}

	return domain.AnalysisResult{
		FilingID: filingID,
		Tier:     tier,
		Score:    tier.Score(),
		Evidence: selectEvidence(surviving),
	}
}

// selectEvidence keeps the strongest match per sentence, orders by severity,
// then rule priority, then document position, and caps the list.
func selectEvidence(matches []domain.ClassificationMatch) []domain.Evidence {
	if len(matches) == 0 {
		return nil
	}

	best := map[int]domain.ClassificationMatch{}
	for _, m := range matches {
		cur, ok := best[m.Sentence.Start]
		if !ok || stronger(m, cur) {
			best[m.Sentence.Start] = m
		}
	}

	ranked := make([]domain.ClassificationMatch, 0, len(best))
	for _, m := range best {
		ranked = append(ranked, m)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return stronger(ranked[i], ranked[j])
	})

	if len(ranked) > evidenceCap {
		ranked = ranked[:evidenceCap]
	}

	evidence := make([]domain.Evidence, 0, len(ranked))
	for _, m := range ranked {
		evidence = append(evidence, domain.Evidence{
			Text:  m.Sentence.Text,
			Start: m.Sentence.Start,
			End:   m.Sentence.End,
		})
	}
	return evidence
}

func stronger(a, b domain.ClassificationMatch) bool {
	if a.Severity != b.Severity {
		return a.Severity == domain.SeverityHigh
	}
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.Sentence.Start < b.Sentence.Start
}
