package collective

import (
	"context"

	"github.com/mpatel-hpc/topoflow/substrate"
	"github.com/mpatel-hpc/topoflow/topology"
)

// ringAllgatherChunks reassembles buf's chunks (bounds, indexed by ring
// position) on every rank by
// passing them around the cycle described by order: at round r, the
// process at ring position p forwards chunk (p-r mod n) to its ring
// successor and receives chunk (p-r-1 mod n) from its predecessor. n-1
// rounds suffice regardless of where n falls relative to a power of two,
// which is why this is the fallback for non-power-of-two group sizes.
func ringAllgatherChunks(ctx context.Context, sub substrate.Substrate, buf []float64, bounds [][2]int, order []int, selfRank int) error {
	n := len(order)
	if n <= 1 {
		return nil
	}
	pos := -1
	for i, r := range order {
		if r == selfRank {
			pos = i
			break
		}
	}
	next := order[(pos+1)%n]
	prev := order[(pos-1+n)%n]

	for r := 0; r < n-1; r++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		sendChunk := ((pos-r)%n + n) % n
		recvChunk := ((pos-r-1)%n + n) % n
		tag := tagRingGather + r

		sLo, sHi := bounds[sendChunk][0], bounds[sendChunk][1]
		if err := sub.Send(buf[sLo:sHi], next, tag); err != nil {
			return err
		}
		rLo, rHi := bounds[recvChunk][0], bounds[recvChunk][1]
		if err := sub.Recv(buf[rLo:rHi], prev, tag); err != nil {
			return err
		}
	}
	return nil
}

// RingAllgather implements spec.md §4.C item 6's ring variant: every rank
// contributes the chunk of buf at chunkBounds(len(buf), N)[rank], and the
// chunks circulate around a ring walked in the model's nearest-neighbor
// order (consecutive ring members topology-adjacent where possible, per
// spec.md §4.C item 5) when model is non-nil, or rank order otherwise.
// Works for any N, not only powers of two — this is the algorithm
// spec.md's concrete torus scenario names explicitly.
func RingAllgather(ctx context.Context, sub substrate.Substrate, model *topology.Model, buf []float64) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	self := sub.Rank()
	bounds := chunkBounds(len(buf), n)
	order, err := ringOrder(model, n)
	if err != nil {
		return err
	}
	// Ring position i carries the chunk of rank order[i].
	byPos := make([][2]int, n)
	for i, r := range order {
		byPos[i] = bounds[r]
	}
	return ringAllgatherChunks(ctx, sub, buf, byPos, order, self)
}

// RecursiveDoublingAllgather implements spec.md §4.C item 6's
// power-of-two variant: log2(N) rounds each doubling the contiguous range
// of chunks every rank holds, mirroring the allreduce reduce-scatter
// phase run in reverse.
func RecursiveDoublingAllgather(ctx context.Context, sub substrate.Substrate, buf []float64) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	self := sub.Rank()
	bounds := chunkBounds(len(buf), n)
	toOriginal := func(tr int) int { return tr }
	lo, hi := bounds[self][0], bounds[self][1]
	return recursiveDoublingAllgather(ctx, sub, buf, self, n, toOriginal, lo, hi)
}

// Allgather picks RecursiveDoublingAllgather for power-of-two group sizes
// and RingAllgather otherwise — the same fallback rule
// ScatterAllgatherBroadcast's second phase uses. optimizer callers that
// need the topology-aware ring specifically (spec.md's torus scenario)
// should call RingAllgather directly instead.
func Allgather(ctx context.Context, sub substrate.Substrate, model *topology.Model, buf []float64) error {
	if isPowerOfTwo(sub.Size()) {
		return RecursiveDoublingAllgather(ctx, sub, buf)
	}
	return RingAllgather(ctx, sub, model, buf)
}

// ringOrder returns the rank sequence to walk as a ring: the
// nearest-neighbor chain starting at rank 0 when model is available,
// otherwise natural rank order.
func ringOrder(model *topology.Model, n int) ([]int, error) {
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = i
	}
	if model == nil {
		return ranks, nil
	}
	return nearestNeighborChain(model, ranks)
}
