// Package fetch implements the retrying fetch engine.
//
// One call to Engine.Fetch runs a fixed number of attempts against a URL.
// Every attempt draws a fresh browser disguise and the next proxy from the
// pool, so a block on one attempt does not carry over to the next:
//
//	attempt 0: disguise A, proxy 1 (probed) -> strategy for the URL's category
//	sleep 3-8s
//	attempt 1: disguise B, proxy 2 (probed) -> strategy
//	sleep 3-8s
//	attempt 2: disguise C, proxy 3          -> strategy
//
// Proxies are probed against an echo endpoint on the first two attempts only.
// A failed probe uses up the attempt without touching the target. When the
// budget is spent the engine returns a *TerminalFailure wrapping the last
// error.
//
// The budget is deliberately fixed. There is no adaptive backoff, no
// per-proxy health tracking and no proxy eviction; a bad proxy simply comes
// around again on the next rotation.
//
// Randomness and sleeping are injected (WithRandom, WithSleeper) so tests
// run instantly and deterministically.
package fetch
