package asset

import "fmt"

// FetchError reports that a single asset (frame image, face texture or model
// binary) could not be downloaded. Callers recover by skipping the asset or
// falling back.
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("asset: fetch %s: %v", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FatalError reports that even the fallback assets are unavailable. It is the
// only asset failure that reaches the host as a blocking error.
type FatalError struct {
	URI string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("asset: fallback %s unavailable: %v", e.URI, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
