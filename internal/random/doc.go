// Package random provides the single seedable source of randomness shared by
// the fetch engine, the disguise generator and the pipeline runner.
//
// Design decision: every component that jitters or picks at random takes a
// *Source instead of calling the global math/rand functions. A fixed seed
// makes backoff delays and header choices reproducible in tests and when
// replaying a run with --seed.
package random
