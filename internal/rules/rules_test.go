package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FilingScanner/internal/domain"
)

func TestDefaultLoads(t *testing.T) {
	t.Parallel()

	set, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, set.Version)
	assert.NotEmpty(t, set.Triggers)
	assert.NotEmpty(t, set.Positive)
	assert.NotEmpty(t, set.Exclusion)

	for _, r := range set.Positive {
		assert.Equal(t, PolarityPositive, r.Polarity, r.Name)
		assert.Contains(t, []domain.Severity{domain.SeverityHigh, domain.SeverityMedium}, r.Severity, r.Name)
	}
	for _, r := range set.Exclusion {
		assert.Equal(t, PolarityExclusion, r.Polarity, r.Name)
		assert.NotEmpty(t, r.Category, r.Name)
		assert.Contains(t, []Scope{ScopeSentence, ScopeContext}, r.Scope, r.Name)
	}
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	t.Parallel()

	set, err := Load("")
	require.NoError(t, err)

	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, def.Version, set.Version)
	assert.Len(t, set.Positive, len(def.Positive))
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	table := `
version: "test-1"
triggers:
  - customer
rules:
  - name: share
    polarity: positive
    severity: high
    priority: 10
    pattern: 'customer.*(\d+)\s*%'
  - name: geo
    polarity: exclusion
    category: geographic
    priority: 10
    pattern: 'asia'
`
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", set.Version)
	require.Len(t, set.Positive, 1)
	require.Len(t, set.Exclusion, 1)
	assert.Equal(t, ScopeSentence, set.Exclusion[0].Scope)
}

func TestLoadMissingFileFails(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParseRejectsBrokenTables(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not yaml": `{{`,
		"no version": `
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
`,
		"no triggers": `
version: "1"
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
`,
		"no rules": `
version: "1"
triggers: [customer]
`,
		"no positive rule": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: exclusion, category: geographic, pattern: 'x'}
`,
		"duplicate name": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
  - {name: a, polarity: positive, severity: high, pattern: 'y'}
`,
		"bad regex": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, pattern: '(['}
`,
		"unknown polarity": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: maybe, severity: high, pattern: 'x'}
`,
		"positive without severity": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, pattern: 'x'}
`,
		"positive with category": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, category: geographic, pattern: 'x'}
`,
		"positive with scope": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, scope: context, pattern: 'x'}
`,
		"exclusion without category": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
  - {name: b, polarity: exclusion, pattern: 'y'}
`,
		"exclusion with severity": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
  - {name: b, polarity: exclusion, category: equity, severity: high, pattern: 'y'}
`,
		"exclusion with unknown scope": `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
  - {name: b, polarity: exclusion, category: equity, scope: paragraph, pattern: 'y'}
`,
		"empty trigger": `
version: "1"
triggers: ["customer", "  "]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
`,
	}

	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := parse([]byte(table))
			assert.Error(t, err)
		})
	}
}

func TestParseSortsByPriority(t *testing.T) {
	t.Parallel()

	table := `
version: "1"
triggers: [customer]
rules:
  - {name: late, polarity: positive, severity: medium, priority: 90, pattern: 'x'}
  - {name: early, polarity: positive, severity: high, priority: 10, pattern: 'y'}
  - {name: mid, polarity: positive, severity: medium, priority: 50, pattern: 'z'}
`
	set, err := parse([]byte(table))
	require.NoError(t, err)

	names := make([]string, 0, len(set.Positive))
	for _, r := range set.Positive {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"early", "mid", "late"}, names)
}

func TestCompiledPatternsAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	table := `
version: "1"
triggers: [customer]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'customer'}
`
	set, err := parse([]byte(table))
	require.NoError(t, err)
	assert.True(t, set.Positive[0].Expr.MatchString("Our largest CUSTOMER"))
}

func TestParseLowercasesTriggers(t *testing.T) {
	t.Parallel()

	table := `
version: "1"
triggers: ["  Customer ", "CLIENT"]
rules:
  - {name: a, polarity: positive, severity: high, pattern: 'x'}
`
	set, err := parse([]byte(table))
	require.NoError(t, err)
	assert.Equal(t, []string{"customer", "client"}, set.Triggers)
}
