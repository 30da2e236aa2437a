package model

import (
	"strings"
	"time"
)

// Per-record output caps.
const (
	MaxEntitiesPerRecord      = 25
	MaxRelationshipsPerRecord = 20
)

// MethodFailed is the extraction method recorded on error records.
const MethodFailed = "failed"

// KnowledgeRecord is the extraction result for one URL.
// Records are immutable once built. An error record never carries
// entities or relationships.
//
// The first six fields form the stable record shape consumed by the
// graph importer. The remaining fields are additive metadata.
type KnowledgeRecord struct {
	Entities         []Entity       `json:"entities"`
	Relationships    []Relationship `json:"relationships"`
	Error            bool           `json:"error"`
	Message          string         `json:"message,omitempty"`
	ExtractionMethod string         `json:"extraction_method"`
	SourceURL        string         `json:"source_url"`

	// Category is the classifier's verdict for SourceURL.
	Category SiteCategory `json:"category"`

	// Title is the page title, when one was found.
	Title string `json:"title,omitempty"`

	// Authoritative marks records built from a structured data source rather
	// than heuristics. Consumers may trust these values more.
	Authoritative bool `json:"authoritative,omitempty"`

	// ContentHash is the SHA3-256 of the fetched body, for change detection.
	ContentHash string `json:"content_hash,omitempty"`

	// ExtractedAt is when the record was produced.
	ExtractedAt time.Time `json:"extracted_at"`
}

// NewKnowledgeRecord builds a success record from a fetched document and the
// extracted graph fragment. Entity and relationship lists are truncated to
// the per-record caps. When the document carries an authoritative Fragment,
// the record is marked Authoritative and the fragment's method wins.
func NewKnowledgeRecord(doc *RawDocument, entities []Entity, relationships []Relationship) *KnowledgeRecord {
	if len(entities) > MaxEntitiesPerRecord {
		entities = entities[:MaxEntitiesPerRecord]
	}
	if len(relationships) > MaxRelationshipsPerRecord {
		relationships = relationships[:MaxRelationshipsPerRecord]
	}

	record := &KnowledgeRecord{
		Entities:         append(make([]Entity, 0, len(entities)), entities...),
		Relationships:    append(make([]Relationship, 0, len(relationships)), relationships...),
		ExtractionMethod: doc.ScrapingMethod(),
		SourceURL:        doc.URL,
		Category:         doc.Category,
		Title:            doc.Title,
		ContentHash:      doc.ContentHash,
		ExtractedAt:      time.Now().UTC(),
	}

	if doc.Fragment != nil {
		record.Authoritative = true
		if doc.Fragment.Method != "" {
			record.ExtractionMethod = doc.Fragment.Method
		}
	}

	return record
}

// NewErrorRecord builds an error record for a URL that could not be processed.
// The message is shown to users verbatim, so it should be human-readable.
func NewErrorRecord(sourceURL string, category SiteCategory, message string) *KnowledgeRecord {
	if message == "" {
		message = "unknown error"
	}
	return &KnowledgeRecord{
		Entities:         []Entity{},
		Relationships:    []Relationship{},
		Error:            true,
		Message:          message,
		ExtractionMethod: MethodFailed,
		SourceURL:        sourceURL,
		Category:         category,
		ExtractedAt:      time.Now().UTC(),
	}
}

// ProxyAssisted reports whether the record's page was fetched through a proxy.
func (r *KnowledgeRecord) ProxyAssisted() bool {
	return strings.HasPrefix(r.ExtractionMethod, MethodPrefixProxy)
}

// EntityNames returns the names of the record's entities in order.
func (r *KnowledgeRecord) EntityNames() []string {
	names := make([]string, len(r.Entities))
	for i, e := range r.Entities {
		names[i] = e.Name
	}
	return names
}
