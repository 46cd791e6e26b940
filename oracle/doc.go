// Package oracle is a test-only correctness check for the collective
// optimizer: it replays the call on a fresh buffer with a fixed reference
// algorithm from the collective library and compares the result with the
// optimized path element-wise, per spec.md §4.E and the resolution of
// Open Question OQ-1 (there being no real "substrate-native" collective
// to twin against, the reference run is simply the simplest correct
// algorithm for the call — binomial tree for broadcast/reduce, ring for
// allreduce/allgather).
package oracle
