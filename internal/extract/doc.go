// Package extract finds named entities in page text with ordered pattern
// matchers.
//
// An Extractor holds a general family of matchers, applied to every page,
// and one family per site category:
//
//	general      capitalized phrases, technical terms, quoted phrases, organizations
//	real_estate  prices, street addresses, bedroom/bathroom counts, square footage
//	professional job titles, employers, skills
//	product      brands, feature adjectives, model numbers
//
// Matchers run in order and their results are merged in that order. Names
// are deduplicated exactly (case-sensitive, first description wins),
// all-uppercase and numeric names are dropped, and the list is capped.
//
// This is deliberately crude. There is no part-of-speech tagging and no
// statistical model; the output is an approximation good enough to seed a
// knowledge graph.
package extract
