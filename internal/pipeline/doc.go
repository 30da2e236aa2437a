// Package pipeline turns URLs into knowledge records.
//
// Each URL becomes a Job that flows through an ordered list of steps:
//
//	FetchStep    classify the URL and acquire it through the fetch engine
//	ExtractStep  find entities in the page text
//	RelateStep   pair co-occurring entities into relationships
//
// The first failing step turns the job into an error record and later steps
// are skipped; a failure never stops the run. The Runner drives jobs one at
// a time with a randomized politeness delay between them, or several at a
// time with errgroup when concurrency is configured, and folds the records
// into a RunSummary.
//
// Design decision: We use a pipeline of steps instead of one function
// because steps carry their own configuration, the pipeline owns ordering,
// cancellation and logging in one place, and tests can run any step alone.
package pipeline
