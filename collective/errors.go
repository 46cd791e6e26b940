package collective

import "errors"

// Sentinel errors for the algorithm library. Substrate failures are
// never wrapped here (spec.md §7 kind 4: "propagates upward; no
// recovery") — only this package's own validation failures get a
// sentinel.
var (
	// ErrEmptyBuffer indicates a buffer too small for the requested
	// count.
	ErrEmptyBuffer = errors.New("collective: buffer too small for requested count")

	// ErrRootOutOfRange indicates a root argument outside [0, world size).
	ErrRootOutOfRange = errors.New("collective: root out of range")
)
