package pipeline

import "errors"

// ErrNoDocument is returned by steps that need a fetched document when the
// job has none.
var ErrNoDocument = errors.New("no document was fetched")
