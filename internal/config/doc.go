// Package config provides configuration structures and utilities for kgscrape.
// It defines the run parameters (start URL, page budget, extraction mode),
// the fetch policy (attempt budget, backoff and politeness windows, TLS
// relaxation), proxy sources, and report/output preferences, plus the
// optional .kgscrape YAML file with per-site overrides.
package config
