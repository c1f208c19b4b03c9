package concentration

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FilingScanner/internal/cache"
	"FilingScanner/internal/domain"
)

func filing(text string) domain.FilingDocument {
	return domain.FilingDocument{Identifier: "ACME-10K", Ticker: "ACME", Text: text}
}

func TestAnalyzeSingleCustomerDisclosure(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	result := d.Analyze(filing(
		"Customer A accounted for 42% of our total revenue in fiscal 2025, " +
			"and the loss of this customer would materially harm our business.",
	))

	assert.Equal(t, domain.TierSevere, result.Tier)
	assert.Equal(t, -5, result.Score)
	require.NotEmpty(t, result.Evidence)
	assert.Contains(t, result.Evidence[0].Text, "Customer A accounted for 42%")
}

func TestAnalyzeGeographicConcentrationIsNotRisk(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	result := d.Analyze(filing(
		"Revenue concentration in the Asia-Pacific region accounted for 35% of total revenue.",
	))

	assert.Equal(t, domain.TierNone, result.Tier)
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Evidence)
}

func TestAnalyzeEquityStakeIsNotRisk(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	result := d.Analyze(filing(
		"One customer holds a 15% equity stake in the Company.",
	))

	assert.Equal(t, domain.TierNone, result.Tier)
	assert.Equal(t, 0, result.Score)
}

func TestAnalyzeMixedDisclosureKeepsGenuineRisk(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	result := d.Analyze(filing(
		"Revenue concentration in the Asia-Pacific region accounted for 20% of total sales. " +
			"Customer B accounted for 55% of our net revenue in the period.",
	))

	assert.Equal(t, domain.TierSevere, result.Tier)
	require.Len(t, result.Evidence, 1)
	assert.Contains(t, result.Evidence[0].Text, "Customer B")
}

func TestAnalyzeMediumSignalsOnly(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	result := d.Analyze(filing(
		"Our top five customers together accounted for approximately 38% of consolidated revenue.",
	))

	assert.Equal(t, domain.TierModerate, result.Tier)
	assert.Equal(t, -3, result.Score)
}

func TestAnalyzeEmptyTextIsNone(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	for _, text := range []string{"", "   ", "\n\t"} {
		result := d.Analyze(filing(text))
		assert.Equal(t, domain.TierNone, result.Tier)
		assert.Equal(t, 0, result.Score)
		assert.Empty(t, result.Evidence)
		assert.Equal(t, "ACME-10K", result.FilingID)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	doc := filing(
		"Customer A accounted for 42% of total revenue. " +
			"Our top three customers represented 61% of net sales. " +
			"The loss of any major customer could harm our results.",
	)

	first := d.Analyze(doc)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.Analyze(doc))
	}
}

func TestCachedAnalyzerSkipsRecomputation(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	a := NewCachedAnalyzer(d, cache.New(), "v1")
	doc := filing("Customer A accounted for 42% of our total revenue in fiscal 2025.")

	first := a.Analyze(doc)
	evaluated := d.Evaluations()
	assert.Positive(t, evaluated)

	second := a.Analyze(doc)
	assert.Equal(t, first, second)
	assert.Equal(t, evaluated, d.Evaluations(), "cache hit must not re-run rules")
}

func TestAnalyzeLongFilingStaysFast(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 3000; i++ {
		b.WriteString("The company operates in a number of markets and continues to invest in growth initiatives across all segments. ")
		if i%100 == 0 {
			b.WriteString("Our largest customer accounted for 12% of total revenue in the period. ")
		}
	}
	doc := filing(b.String())

	d := NewDetector(mustRules(t), nil)
	start := time.Now()
	result := d.Analyze(doc)
	elapsed := time.Since(start)

	assert.Equal(t, domain.TierSevere, result.Tier)
	assert.Less(t, elapsed, 3*time.Second, "analysis of a full-length filing must stay fast")
}

func TestCachedAnalyzerNilCacheComputesDirectly(t *testing.T) {
	t.Parallel()

	d := NewDetector(mustRules(t), nil)
	a := NewCachedAnalyzer(d, nil, "v1")
	doc := filing("Customer A accounted for 42% of our total revenue in fiscal 2025.")

	_ = a.Analyze(doc)
	evaluated := d.Evaluations()
	_ = a.Analyze(doc)
	assert.Greater(t, d.Evaluations(), evaluated)
}
