package concentration

import (
	"iter"
	"strings"

	"FilingScanner/internal/domain"
)

// Sentences shorter than this are headings, table fragments, or page
// furniture and never carry a usable disclosure.
const minSentenceLen = 20

// Extractor performs the cheap first-pass filter over raw filing text:
// sentence segmentation plus a trigger-vocabulary containment check.
type Extractor struct {
	triggers []string
}

// NewExtractor builds an extractor over a lowercase trigger vocabulary.
func NewExtractor(triggers []string) *Extractor {
	return &Extractor{triggers: triggers}
}

// Candidates returns a lazy, restartable sequence of candidate sentences in
// document order. Empty or malformed text yields an empty sequence. The
// walk is a single pass; nothing beyond the current sentence is buffered.
func (e *Extractor) Candidates(filing domain.FilingDocument) iter.Seq[domain.CandidateSentence] {
	return func(yield func(domain.CandidateSentence) bool) {
		text := filing.Text
		start := 0

		emit := func(start, end int) bool {
			sentence, s, eOff := trimOffsets(text, start, end)
			if len(sentence) < minSentenceLen {
				return true
			}
			if !e.hasTrigger(sentence) {
				return true
			}
			return yield(domain.CandidateSentence{
				FilingID: filing.Identifier,
				Text:     sentence,
				Start:    s,
				End:      eOff,
			})
		}

		for i := 0; i < len(text); i++ {
			if !isTerminator(text[i]) {
				continue
			}

			// Decimal points ("42.5%") and mid-token dots are not
			// sentence boundaries.
			if text[i] == '.' && i+1 < len(text) && !isBoundary(text[i+1]) {
				continue
			}

			// Single-letter abbreviations ("U.S.", "Customer A.") are
			// not boundaries either.
			if text[i] == '.' && isAbbrevDot(text, i) {
				continue
			}

			end := i + 1
			for end < len(text) && isTerminator(text[end]) {
				end++
			}
			if !emit(start, end) {
				return
			}
			start = end
		}

		if start < len(text) {
			emit(start, len(text))
		}
	}
}

func (e *Extractor) hasTrigger(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, t := range e.triggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isBoundary(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// trimOffsets strips surrounding whitespace while keeping the character
// offsets anchored to the original filing text.
func trimOffsets(text string, start, end int) (string, int, int) {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return text[start:end], start, end
}

func isAbbrevDot(text string, i int) bool {
	if i < 1 || !isAlnum(text[i-1]) {
		return false
	}
	return i < 2 || !isAlnum(text[i-2])
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
