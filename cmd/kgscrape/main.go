// Package main provides the entry point for the kgscrape CLI.
//
// kgscrape turns web pages into a small knowledge graph: it fetches pages
// through rotating proxies and request disguises, classifies each URL,
// extracts named entities with category-tuned patterns and links entities
// that share a sentence.
//
// Usage:
//
//	kgscrape scrape <url>
//	kgscrape scrape --extract-type discover --max-pages 20 <url>
//	kgscrape export run.json > graph.cypher
//
// See --help for all available options.
package main

// main is the entry point for kgscrape.
func main() {
	Execute()
}
