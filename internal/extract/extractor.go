package extract

import (
	"github.com/nao1215/kgscrape/internal/model"
)

// DefaultMaxEntities caps the entities returned for one page.
const DefaultMaxEntities = 25

// Extractor runs the general matchers and the page category's matchers.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	general    []Matcher
	categories map[model.SiteCategory][]Matcher
	limit      int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLimit overrides the entity cap.
func WithLimit(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.limit = n
		}
	}
}

// WithCategoryMatchers appends matchers to category c's family.
func WithCategoryMatchers(c model.SiteCategory, m ...Matcher) Option {
	return func(e *Extractor) {
		e.categories[c] = append(e.categories[c], m...)
	}
}

// WithGeneralMatchers appends matchers to the general family.
func WithGeneralMatchers(m ...Matcher) Option {
	return func(e *Extractor) {
		e.general = append(e.general, m...)
	}
}

// New returns an Extractor with the built-in matcher families.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		general:    GeneralMatchers(),
		categories: make(map[model.SiteCategory][]Matcher, len(model.AllCategories)),
		limit:      DefaultMaxEntities,
	}
	for _, c := range model.AllCategories {
		e.categories[c] = CategoryMatchers(c)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the deduplicated entities of text, general matches first
// and category matches after them, capped at the limit.
//
// Both families run over the whole text before the cap applies, so the
// category matches are already queued when the general family fills up;
// they are admitted in order until the cap is reached.
func (e *Extractor) Extract(text string, category model.SiteCategory) []model.Entity {
	if text == "" {
		return []model.Entity{}
	}

	var candidates []model.Entity
	for _, m := range e.general {
		candidates = append(candidates, m.Match(text)...)
	}
	if category != model.CategoryGeneric {
		for _, m := range e.categories[category] {
			candidates = append(candidates, m.Match(text)...)
		}
	}

	out := make([]model.Entity, 0, min(len(candidates), e.limit))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if len(out) >= e.limit {
			break
		}
		if seen[c.Name] || !model.IsValidEntityName(c.Name) {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}
