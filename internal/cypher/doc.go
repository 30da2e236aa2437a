// Package cypher converts knowledge records into Cypher statements for a
// Neo4j-compatible graph database.
//
// The output is a script for cypher-shell: a uniqueness constraint and
// indexes first, then one MERGE per distinct entity name, then one
// RELATES_TO edge per relationship. Error records are skipped.
//
//	gen := cypher.NewGenerator()
//	records, err := cypher.ReadRecords(paths)
//	stats, err := gen.Write(os.Stdout, records)
package cypher
