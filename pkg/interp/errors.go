package interp

import "errors"

// ErrAtBeginning and ErrAtEnd are the Interpreter-facade forms of
// history.ErrAtBeginning/ErrAtEnd, kept as a distinct pair here so
// callers can errors.Is against the facade's own error taxonomy without
// reaching into pkg/history.
var (
	ErrAtBeginning = errors.New("interp: already at the beginning of history")
	ErrAtEnd       = errors.New("interp: already at the end of history")
)
