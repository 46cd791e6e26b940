package topology

import "errors"

// Sentinel errors for topology construction. Never wrapped with a
// formatted string at the definition site; callers branch with errors.Is.
// Build attaches call context with fmt.Errorf("%w", ...) at the boundary.
var (
	// ErrInvalidTopologyConfig indicates a shape parameter inconsistent
	// with the requested Kind (odd fat-tree k, a zero torus dimension, a
	// dragonfly group/router/host product that doesn't match Shape.N, an
	// unrecognized Kind).
	ErrInvalidTopologyConfig = errors.New("topology: invalid topology configuration")

	// ErrRankOutOfRange indicates a rank argument outside [0, world size).
	ErrRankOutOfRange = errors.New("topology: rank out of range")

	// ErrIndexOutOfRange indicates a matrix Get/Set index outside [0, N).
	ErrIndexOutOfRange = errors.New("topology: matrix index out of range")

	// ErrDimensionMismatch indicates two matrices of differing size were
	// compared or combined.
	ErrDimensionMismatch = errors.New("topology: dimension mismatch")
)
