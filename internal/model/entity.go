package model

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entity name bounds. Names outside this range are treated as noise.
const (
	MinEntityNameLength = 3
	MaxEntityNameLength = 49
)

// Entity is a named thing extracted from page text.
// Name is the deduplication key within one record and is compared
// case-sensitively. The same name may appear in several records of one run.
type Entity struct {
	// Name is the entity's surface text, e.g. "Apple Inc" or "$450,000".
	Name string `json:"name"`

	// Description says which pattern produced the entity.
	Description string `json:"description"`
}

// EntityRef is a soft reference to an entity by name.
// It may name an entity that is absent from the record that carries it.
type EntityRef struct {
	Name string `json:"name"`
}

// Ref returns a soft reference to e.
func (e Entity) Ref() EntityRef {
	return EntityRef{Name: e.Name}
}

// RelationType classifies a relationship between two entities.
type RelationType string

// Relation types produced by the heuristic builder, checked in this priority order.
const (
	RelationLocatedAt      RelationType = "LOCATED_AT"
	RelationOwns           RelationType = "OWNS"
	RelationEmployedBy     RelationType = "EMPLOYED_BY"
	RelationManufacturedBy RelationType = "MANUFACTURED_BY"
	RelationPricedAt       RelationType = "PRICED_AT"
	RelationUses           RelationType = "USES"
	RelationCreates        RelationType = "CREATES"
	RelationPartOf         RelationType = "PART_OF"
	RelationSimilarTo      RelationType = "SIMILAR_TO"
	RelationIntegratesWith RelationType = "INTEGRATES_WITH"
	RelationRelatedTo      RelationType = "RELATED_TO"
)

// Relation types produced only by the property API strategy.
const (
	RelationHasBedrooms  RelationType = "HAS_BEDROOMS"
	RelationHasBathrooms RelationType = "HAS_BATHROOMS"
	RelationHasArea      RelationType = "HAS_AREA"
)

// Relationship is a typed, directed pairing of two entity names.
type Relationship struct {
	Entity1      EntityRef    `json:"entity1"`
	Entity2      EntityRef    `json:"entity2"`
	RelationType RelationType `json:"relation_type"`
	Description  string       `json:"description"`
}

// IsValidEntityName reports whether name may become an entity.
// Names must be 3 to 49 characters long, must not be all-uppercase
// (acronym noise such as "HOME" or "FAQ") and must not be purely numeric.
func IsValidEntityName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < MinEntityNameLength || n > MaxEntityNameLength {
		return false
	}
	if strings.TrimSpace(name) != name {
		return false
	}
	return !isAllUpper(name) && !isNumeric(name)
}

// isAllUpper reports whether name has letters and every letter is uppercase.
func isAllUpper(name string) bool {
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// isNumeric reports whether name consists only of digits and number punctuation.
func isNumeric(name string) bool {
	for _, r := range name {
		if !unicode.IsDigit(r) && r != '.' && r != ',' && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}
