package bundle

import "errors"

var (
	// ErrFormatMismatch means a buffer's byte length is inconsistent with the
	// declared point count. Fatal to the load; nothing is truncated or padded.
	ErrFormatMismatch = errors.New("bundle format mismatch")

	// ErrNetworkFailure means a fetch was rejected or returned a non-OK status
	// other than 404.
	ErrNetworkFailure = errors.New("bundle fetch failed")

	// ErrNotFound means the file (and its .zst variant) is absent. Optional
	// files degrade gracefully on this; required files turn it fatal.
	ErrNotFound = errors.New("bundle file not found")
)
