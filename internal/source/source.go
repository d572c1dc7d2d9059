// Package source implements the offline star file formats, the
// template pack format, and the live frame reader named in spec.md §6.
package source

import "fmt"

// SourceError wraps a failure reading an offline file or the live
// feed. Per spec.md §7 it triggers shutdown rather than a retry.
type SourceError struct {
	Path  string
	Cause error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("source: %v", e.Cause)
	}

	return fmt.Sprintf("source: %s: %v", e.Path, e.Cause)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
