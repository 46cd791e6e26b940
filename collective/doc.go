// Package collective implements the topology-aware Algorithm Library: the
// seven collective algorithms spec.md §4.C names, each shaped by a
// substrate.Substrate and a *topology.Model. Every algorithm's contract is
// symmetric — every participant calls the same function with the same
// arguments and returns once its role in the collective is complete; the
// implementation is free to choose any internal message pattern
// consistent with the model, but tag discipline (one distinct tag per
// round) and FIFO-per-(src,dst,tag) ordering from spec.md §5 are load-
// bearing invariants every algorithm here relies on.
//
// Buffers are []float64 throughout: every scenario in spec.md §8 is a
// float vector, and heterogeneous-datatype reductions beyond
// {Sum,Max,Min,Prod} are an explicit non-goal, so this package commits to
// the one concrete datatype rather than carrying a generic datatype_size
// parameter no algorithm here would exercise.
package collective
