package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/nao1215/kgscrape/internal/model"
)

// Matcher finds candidate entities in text. Implementations must be
// deterministic and safe for concurrent use.
type Matcher interface {
	// Name identifies the matcher, e.g. "capitalized_phrase".
	Name() string

	// Match returns candidates in the order they occur in text.
	// Candidates are not yet validated or deduplicated.
	Match(text string) []model.Entity
}

// PatternMatcher turns every match of a regular expression into an entity.
type PatternMatcher struct {
	name        string
	re          *regexp.Regexp
	group       int
	description string
	normalize   func(string) string
}

// PatternOption configures a PatternMatcher.
type PatternOption func(*PatternMatcher)

// WithGroup uses capture group n as the entity name instead of the whole match.
func WithGroup(n int) PatternOption {
	return func(m *PatternMatcher) {
		m.group = n
	}
}

// WithNormalize rewrites each matched name, e.g. to canonical units.
func WithNormalize(fn func(string) string) PatternOption {
	return func(m *PatternMatcher) {
		m.normalize = fn
	}
}

// NewPatternMatcher compiles pattern. It panics on an invalid pattern, like
// regexp.MustCompile; matchers are built from constants at init time.
func NewPatternMatcher(name, pattern, description string, opts ...PatternOption) *PatternMatcher {
	m := &PatternMatcher{
		name:        name,
		re:          regexp.MustCompile(pattern),
		description: description,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the matcher name.
func (m *PatternMatcher) Name() string {
	return m.name
}

// Match implements Matcher.
func (m *PatternMatcher) Match(text string) []model.Entity {
	var out []model.Entity
	for _, sub := range m.re.FindAllStringSubmatch(text, -1) {
		if m.group >= len(sub) {
			continue
		}
		name := cleanName(sub[m.group])
		if m.normalize != nil {
			name = m.normalize(name)
		}
		if name == "" {
			continue
		}
		out = append(out, model.Entity{Name: name, Description: m.description})
	}
	return out
}

// VocabularyMatcher finds fixed terms case-insensitively on word boundaries
// and reports them in their canonical spelling ("IPHONE" becomes "iPhone").
type VocabularyMatcher struct {
	name        string
	re          *regexp.Regexp
	canonical   map[string]string
	description string
}

// NewVocabularyMatcher builds a matcher over terms. Longer terms win over
// their prefixes ("JavaScript" over "Java").
func NewVocabularyMatcher(name string, terms []string, description string) *VocabularyMatcher {
	canonical := make(map[string]string, len(terms))
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		key := strings.ToLower(t)
		if _, dup := canonical[key]; dup {
			continue
		}
		canonical[key] = t
		quoted = append(quoted, regexp.QuoteMeta(t))
	}
	sort.SliceStable(quoted, func(i, j int) bool {
		return len(quoted[i]) > len(quoted[j])
	})

	pattern := `(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`
	return &VocabularyMatcher{
		name:        name,
		re:          regexp.MustCompile(pattern),
		canonical:   canonical,
		description: description,
	}
}

// Name returns the matcher name.
func (m *VocabularyMatcher) Name() string {
	return m.name
}

// Match implements Matcher.
func (m *VocabularyMatcher) Match(text string) []model.Entity {
	var out []model.Entity
	for _, hit := range m.re.FindAllString(text, -1) {
		name, ok := m.canonical[strings.ToLower(hit)]
		if !ok {
			continue
		}
		out = append(out, model.Entity{Name: name, Description: m.description})
	}
	return out
}

// cleanName trims whitespace, collapses inner runs of spaces and strips a
// trailing period ("Acme Corp." becomes "Acme Corp").
func cleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSuffix(s, ".")
}
