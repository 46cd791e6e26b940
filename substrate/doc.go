// Package substrate declares the minimum message-passing contract the
// collective optimizer and algorithm library consume, and ships an
// in-process mock implementation for tests.
//
// The production message-passing layer (MPI or similar) is out of scope for
// this repository — it is injected at construction as a Substrate, never
// reached through package-level globals. Tests use NewMockGroup, a
// synchronous in-process "software switch" that delivers messages through
// buffered channels keyed by (src, dst, tag), preserving the FIFO-per-tuple
// ordering the algorithm library relies on.
package substrate
