// Package model defines the data structures shared across kgscrape.
//
// This package contains the following main types:
//   - SiteCategory: the URL-derived page category that drives strategy and extractor selection
//   - ProxyCandidate: one egress address loaded into the proxy pool
//   - RawDocument: a fetched page plus its high-signal text
//   - Entity and Relationship: the knowledge graph fragment extracted from one page
//   - KnowledgeRecord: the full extraction result for one URL
//   - RunSummary: the aggregate of every record produced by one invocation
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The fetch engine, the extractors, the report writers and the
// database all exchange these types, so centralizing them prevents import cycles.
//
// Relationships reference entities by name only (EntityRef). Resolution of a
// name to a node happens at import time in the graph database, never here.
package model
