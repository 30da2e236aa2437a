package relate

import (
	"regexp"
	"strings"

	"github.com/nao1215/kgscrape/internal/model"
)

// Bucket maps a set of keyword cues to a relation type.
type Bucket struct {
	Type     model.RelationType
	Keywords []string
	re       *regexp.Regexp
}

// NewBucket compiles keywords into a case-insensitive, word-bounded matcher.
func NewBucket(t model.RelationType, keywords ...string) Bucket {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return Bucket{
		Type:     t,
		Keywords: keywords,
		re:       regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Matches reports whether sentence contains one of the bucket's cues.
func (b Bucket) Matches(sentence string) bool {
	return b.re.MatchString(sentence)
}

// DefaultBuckets returns the keyword buckets in priority order. The first
// bucket that matches a sentence decides the type of every pair in it.
//
// "has" is not an ownership cue: "the house has 3 bedrooms" says nothing
// about who owns what.
func DefaultBuckets() []Bucket {
	return []Bucket{
		NewBucket(model.RelationLocatedAt,
			"located", "situated", "based in", "headquartered", "near", "address", "neighborhood"),
		NewBucket(model.RelationOwns,
			"owns", "owned", "owner", "acquired", "belongs to"),
		NewBucket(model.RelationEmployedBy,
			"works at", "works for", "worked at", "worked for", "employed", "employee", "hired", "joined"),
		NewBucket(model.RelationManufacturedBy,
			"manufactured", "made by", "produced by", "built by", "maker of"),
		NewBucket(model.RelationPricedAt,
			"costs", "cost", "price", "priced", "sells for", "listed at", "worth"),
		NewBucket(model.RelationUses,
			"uses", "using", "used", "powered by", "runs on", "supports", "compatible with"),
		NewBucket(model.RelationCreates,
			"created", "creates", "developed", "founded", "designed", "released", "launched", "invented"),
		NewBucket(model.RelationPartOf,
			"part of", "member of", "division of", "subsidiary of", "includes", "contains"),
		NewBucket(model.RelationSimilarTo,
			"similar to", "like", "compared to", "alternative to", "versus", "vs", "competitor"),
		NewBucket(model.RelationIntegratesWith,
			"integrates", "integration", "connects to", "works with", "syncs with", "plugin for"),
	}
}

// classify returns the type of the first matching bucket, or RELATED_TO.
func classify(buckets []Bucket, sentence string) model.RelationType {
	for _, b := range buckets {
		if b.Matches(sentence) {
			return b.Type
		}
	}
	return model.RelationRelatedTo
}
