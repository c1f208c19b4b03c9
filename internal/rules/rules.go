package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"FilingScanner/internal/domain"
)

// Polarity separates rules that detect concentration from rules that
// suppress a detection. Exclusion rules never add matches.
type Polarity string

const (
	PolarityPositive  Polarity = "positive"
	PolarityExclusion Polarity = "exclusion"
)

// Category labels why an exclusion rule disqualifies a match.
type Category string

const (
	CategoryGeographic Category = "geographic"
	CategoryProcedural Category = "procedural"
	CategoryEquity     Category = "equity"
)

// Scope controls how much text an exclusion rule sees: the matched sentence
// alone, or the sentence plus a surrounding context window for signals that
// live near the sentence rather than in it (section headers, disclaimers).
type Scope string

const (
	ScopeSentence Scope = "sentence"
	ScopeContext  Scope = "context"
)

// Rule is one compiled pattern from the rule table.
type Rule struct {
	Name     string
	Expr     *regexp.Regexp
	Polarity Polarity
	Severity domain.Severity
	Category Category
	Scope    Scope
	Priority int
}

// Set is an immutable, versioned rule table loaded once at process start.
type Set struct {
	Version   string
	Triggers  []string
	Positive  []Rule
	Exclusion []Rule
}

type ruleSpec struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Polarity string `yaml:"polarity"`
	Severity string `yaml:"severity"`
	Category string `yaml:"category"`
	Scope    string `yaml:"scope"`
	Priority int    `yaml:"priority"`
}

type fileSpec struct {
	Version  string     `yaml:"version"`
	Triggers []string   `yaml:"triggers"`
	Rules    []ruleSpec `yaml:"rules"`
}

//go:embed default_rules.yaml
var defaultTable []byte

// Default parses the rule table embedded in the binary.
func Default() (*Set, error) {
	return parse(defaultTable)
}

// Load reads a rule table from path, or returns the embedded default set
// when path is empty. Any parse, compile, or validation failure is fatal to
// the caller: a broken rule table would silently disable detection.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table %s: %w", path, err)
	}

	set, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("rule table %s: %w", path, err)
	}
	return set, nil
}

func parse(raw []byte) (*Set, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}

	if spec.Version == "" {
		return nil, fmt.Errorf("rule table has no version tag")
	}
	if len(spec.Triggers) == 0 {
		return nil, fmt.Errorf("rule table has no trigger vocabulary")
	}
	if len(spec.Rules) == 0 {
		return nil, fmt.Errorf("rule table has no rules")
	}

	set := &Set{Version: spec.Version}
	for _, t := range spec.Triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return nil, fmt.Errorf("rule table contains an empty trigger")
		}
		set.Triggers = append(set.Triggers, t)
	}

	seen := map[string]struct{}{}
	for i, rs := range spec.Rules {
		rule, err := compile(rs)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rs.Name, err)
		}
		if _, dup := seen[rule.Name]; dup {
			return nil, fmt.Errorf("duplicate rule name %s", rule.Name)
		}
		seen[rule.Name] = struct{}{}

		switch rule.Polarity {
		case PolarityPositive:
			set.Positive = append(set.Positive, rule)
		case PolarityExclusion:
			set.Exclusion = append(set.Exclusion, rule)
		}
	}

	if len(set.Positive) == 0 {
		return nil, fmt.Errorf("rule table has no positive rules")
	}

	// Priority decides which match is reported first when several rules of
	// equal severity fire on the same filing.
	sort.SliceStable(set.Positive, func(i, j int) bool {
		return set.Positive[i].Priority < set.Positive[j].Priority
	})
	sort.SliceStable(set.Exclusion, func(i, j int) bool {
		return set.Exclusion[i].Priority < set.Exclusion[j].Priority
	})

	return set, nil
}

func compile(rs ruleSpec) (Rule, error) {
	if rs.Name == "" {
		return Rule{}, fmt.Errorf("missing name")
	}
	if rs.Pattern == "" {
		return Rule{}, fmt.Errorf("missing pattern")
	}

	expr, err := regexp.Compile("(?i)" + rs.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern: %w", err)
	}

	rule := Rule{
		Name:     rs.Name,
		Expr:     expr,
		Priority: rs.Priority,
	}

	switch Polarity(rs.Polarity) {
	case PolarityPositive:
		rule.Polarity = PolarityPositive
		switch domain.Severity(rs.Severity) {
		case domain.SeverityHigh, domain.SeverityMedium:
			rule.Severity = domain.Severity(rs.Severity)
		default:
			return Rule{}, fmt.Errorf("positive rule needs severity high or medium, got %q", rs.Severity)
		}
		if rs.Category != "" {
			return Rule{}, fmt.Errorf("positive rule must not carry a category")
		}
		if rs.Scope != "" {
			return Rule{}, fmt.Errorf("positive rule must not carry a scope")
		}
	case PolarityExclusion:
		rule.Polarity = PolarityExclusion
		switch Category(rs.Category) {
		case CategoryGeographic, CategoryProcedural, CategoryEquity:
			rule.Category = Category(rs.Category)
		default:
			return Rule{}, fmt.Errorf("exclusion rule needs category geographic, procedural, or equity, got %q", rs.Category)
		}
		if rs.Severity != "" {
			return Rule{}, fmt.Errorf("exclusion rule must not carry a severity")
		}
		switch Scope(rs.Scope) {
		case ScopeSentence, ScopeContext:
			rule.Scope = Scope(rs.Scope)
		case "":
			rule.Scope = ScopeSentence
		default:
			return Rule{}, fmt.Errorf("unknown scope %q", rs.Scope)
		}
	default:
		return Rule{}, fmt.Errorf("unknown polarity %q", rs.Polarity)
	}

	return rule, nil
}
