// Package tor runs an optional embedded Tor daemon used as one more egress
// route for the proxy pool.
//
// With --tor the scraper starts Tor through tornago, verifies that the
// SOCKS port speaks SOCKS5, and registers the address as a socks5 proxy
// candidate. The daemon is stopped when the run ends.
//
// Starting Tor takes one to three minutes while it bootstraps circuits, so
// it is off by default.
package tor
