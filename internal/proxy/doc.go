// Package proxy loads, rotates and probes the egress proxies used by the
// fetch engine.
//
// A Pool is built once per run from one or more Sources (public proxy
// lists, static addresses from the config file, an embedded Tor daemon).
// Each source contributes at most PerSourceLimit candidates, duplicates are
// dropped and the pool is truncated to MaxPoolSize. Sources that fail are
// logged and skipped; if every source fails the pool is empty and the
// engine connects directly.
//
// Candidates are never removed. A proxy that fails one attempt may well
// work for the next URL, and the engine's retry budget already bounds the
// cost of a bad one.
package proxy
