package cypher

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/kgscrape/internal/model"
)

// Label and edge type used for every node and relationship.
const (
	NodeLabel = "Entity"
	EdgeType  = "RELATES_TO"
)

const header = `// Constraints
CREATE CONSTRAINT entity_name_unique IF NOT EXISTS FOR (e:Entity) REQUIRE e.name IS UNIQUE;

// Indexes
CREATE INDEX relationship_type_index IF NOT EXISTS FOR ()-[r:RELATES_TO]-() ON (r.type);
`

// Stats reports what a Write produced.
type Stats struct {
	// Records is the number of records converted.
	Records int

	// Skipped is the number of error records ignored.
	Skipped int

	// Nodes is the number of distinct entity nodes written.
	Nodes int

	// Edges is the number of relationship statements written.
	Edges int
}

// Generator writes Cypher scripts.
type Generator struct {
	clearExisting bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithClearExisting prepends a statement that deletes every node.
func WithClearExisting(clear bool) Option {
	return func(g *Generator) {
		g.clearExisting = clear
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Write writes the script for records to w.
//
// Entities are merged by name across all records and the first description
// wins. Relationships match their endpoints by name, so an edge whose
// endpoint was never emitted as an entity creates nothing.
func (g *Generator) Write(w io.Writer, records []*model.KnowledgeRecord) (Stats, error) {
	var stats Stats
	bw := bufio.NewWriter(w)

	bw.WriteString(header)
	if g.clearExisting {
		bw.WriteString("\n// Clear existing data\nMATCH (n) DETACH DELETE n;\n")
	}

	seen := make(map[string]bool)
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.Error {
			stats.Skipped++
			continue
		}
		stats.Records++

		var nodes []model.Entity
		for _, e := range r.Entities {
			if e.Name == "" || seen[e.Name] {
				continue
			}
			seen[e.Name] = true
			nodes = append(nodes, e)
		}
		if len(nodes) > 0 {
			fmt.Fprintf(bw, "\n// Entities from %s\n", Escape(r.SourceURL))
			for _, e := range nodes {
				fmt.Fprintf(bw, "MERGE (e:%s {name: \"%s\"}) ON CREATE SET e.description = \"%s\";\n",
					NodeLabel, Escape(e.Name), Escape(e.Description))
			}
			stats.Nodes += len(nodes)
		}

		if len(r.Relationships) == 0 {
			continue
		}
		fmt.Fprintf(bw, "\n// Relationships from %s\n", Escape(r.SourceURL))
		for _, rel := range r.Relationships {
			if rel.Entity1.Name == "" || rel.Entity2.Name == "" {
				continue
			}
			relType := rel.RelationType
			if relType == "" {
				relType = model.RelationRelatedTo
			}
			fmt.Fprintf(bw,
				"MATCH (a:%s {name: \"%s\"}), (b:%s {name: \"%s\"}) CREATE (a)-[:%s {type: \"%s\", description: \"%s\"}]->(b);\n",
				NodeLabel, Escape(rel.Entity1.Name),
				NodeLabel, Escape(rel.Entity2.Name),
				EdgeType, Escape(string(relType)), Escape(rel.Description))
			stats.Edges++
		}
	}

	return stats, bw.Flush()
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`'`, `\'`,
	"\r\n", " ",
	"\r", " ",
	"\n", " ",
)

// Escape makes s safe inside a double-quoted Cypher string literal.
func Escape(s string) string {
	return escaper.Replace(s)
}
