package relate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/nao1215/kgscrape/internal/model"
)

const (
	// DefaultMaxRelationships caps the relationships built for one page.
	DefaultMaxRelationships = 20

	// MinSentenceLength drops fragments such as "Inc" or "Home".
	MinSentenceLength = 20

	// MaxSentences bounds how many sentences are scanned.
	MaxSentences = 100

	// MaxExcerptLength bounds the sentence excerpt in descriptions.
	MaxExcerptLength = 150
)

// Builder builds co-occurrence relationships. It is safe for concurrent use.
type Builder struct {
	buckets []Bucket
	limit   int
}

// Option configures a Builder.
type Option func(*Builder)

// WithLimit overrides the relationship cap.
func WithLimit(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.limit = n
		}
	}
}

// WithBuckets replaces the keyword buckets.
func WithBuckets(buckets ...Bucket) Option {
	return func(b *Builder) {
		if len(buckets) > 0 {
			b.buckets = buckets
		}
	}
}

// New returns a Builder with DefaultBuckets.
func New(opts ...Option) *Builder {
	b := &Builder{
		buckets: DefaultBuckets(),
		limit:   DefaultMaxRelationships,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns relationships between entities that share a sentence of
// text. Each pair in a sentence is emitted once as (earlier, later) in
// entity order. Building stops as soon as the cap is reached.
func (b *Builder) Build(entities []model.Entity, text string) []model.Relationship {
	out := make([]model.Relationship, 0)
	if len(entities) < 2 || text == "" {
		return out
	}

	// cases.Caser keeps state, so each call gets its own.
	fold := cases.Fold()
	folded := make([]string, len(entities))
	for i, e := range entities {
		folded[i] = fold.String(e.Name)
	}

	for _, sentence := range Sentences(text) {
		lower := fold.String(sentence)

		var present []int
		for i, name := range folded {
			if name != "" && strings.Contains(lower, name) {
				present = append(present, i)
			}
		}
		if len(present) < 2 {
			continue
		}

		relType := classify(b.buckets, sentence)
		excerpt := Excerpt(sentence)
		for x := 0; x < len(present); x++ {
			for y := x + 1; y < len(present); y++ {
				e1, e2 := entities[present[x]], entities[present[y]]
				out = append(out, model.Relationship{
					Entity1:      e1.Ref(),
					Entity2:      e2.Ref(),
					RelationType: relType,
					Description:  fmt.Sprintf("%s and %s appear together: %s", e1.Name, e2.Name, excerpt),
				})
				if len(out) >= b.limit {
					return out
				}
			}
		}
	}
	return out
}

// Sentences splits text on '.', '!' and '?', trims each piece, drops pieces
// shorter than MinSentenceLength and returns at most MaxSentences.
func Sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	out := make([]string, 0, min(len(parts), MaxSentences))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) < MinSentenceLength {
			continue
		}
		out = append(out, p)
		if len(out) == MaxSentences {
			break
		}
	}
	return out
}

// Excerpt shortens sentence to at most MaxExcerptLength runes, marking a
// cut with "...".
func Excerpt(sentence string) string {
	if utf8.RuneCountInString(sentence) <= MaxExcerptLength {
		return sentence
	}
	runes := []rune(sentence)
	return strings.TrimSpace(string(runes[:MaxExcerptLength-3])) + "..."
}
