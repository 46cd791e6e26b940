package collective

import "github.com/mpatel-hpc/topoflow/substrate"

// ReduceOp is the closed reduction-operator variant every Reduce/Allreduce
// call carries. It is a type alias for substrate.Op rather than a
// second parallel enum: the operator is "a tagged union with a
// local-apply function, not runtime-dispatched objects" (spec.md §9), and
// substrate.Op already is exactly that — aliasing keeps that one source
// of truth instead of duplicating Commutative()/Apply() here.
type ReduceOp = substrate.Op

// Re-exported for callers that only import collective.
const (
	Sum  = substrate.Sum
	Max  = substrate.Max
	Min  = substrate.Min
	Prod = substrate.Prod
)

// Kind names which of the four public collective shapes a Descriptor
// describes.
type Kind int

const (
	KindBroadcast Kind = iota
	KindReduce
	KindAllreduce
	KindAllgather
)

// Descriptor is the ephemeral Collective Call Descriptor (spec.md §3):
// created per operation, never retained past the call it describes.
type Descriptor struct {
	Kind   Kind
	Root   int // meaningful for Broadcast and Reduce
	Count  int
	Op     ReduceOp // meaningful for Reduce and Allreduce
	Ranks  int      // world size, cached for convenience
}
