package fetch

import (
	"fmt"
)

// TerminalFailure is returned by Engine.Fetch when no attempt succeeded or
// the context ended the loop early.
type TerminalFailure struct {
	// URL is the target that could not be fetched.
	URL string

	// Attempts is the number of attempts actually started.
	Attempts int

	// Err is the last attempt's error, or the context error.
	Err error
}

// Error implements error.
func (f *TerminalFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("failed to fetch %s after %d attempt(s)", f.URL, f.Attempts)
	}
	return fmt.Sprintf("failed to fetch %s after %d attempt(s): %v", f.URL, f.Attempts, f.Err)
}

// Unwrap returns the underlying error.
func (f *TerminalFailure) Unwrap() error {
	return f.Err
}
