package collective

import (
	"context"

	"github.com/mpatel-hpc/topoflow/substrate"
	"github.com/mpatel-hpc/topoflow/topology"
)

// RingAllreduce implements spec.md §4.C item 5: bandwidth-optimal
// allreduce over a ring walked in topology-nearest-neighbor order. 2(N-1)
// rounds: N-1 rounds of reduce-scatter (each rank folds a distinct chunk
// arriving from its ring predecessor into its running total) followed by
// N-1 rounds of allgather (the fully-reduced chunks circulate once more
// so every rank ends with the complete result). Requires a commutative
// op, since chunks arrive at each rank in ring order rather than rank
// order (ReduceOp.Commutative(), spec.md §7 kind 3).
func RingAllreduce(ctx context.Context, sub substrate.Substrate, model *topology.Model, buf []float64, op ReduceOp) error {
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
	pos := -1
	for i, r := range order {
		if r == self {
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
		tag := tagRingScatter + r

		sLo, sHi := bounds[sendChunk][0], bounds[sendChunk][1]
		if err := sub.Send(buf[sLo:sHi], next, tag); err != nil {
			return err
		}
		rLo, rHi := bounds[recvChunk][0], bounds[recvChunk][1]
		recv := make([]float64, rHi-rLo)
		if err := sub.Recv(recv, prev, tag); err != nil {
			return err
		}
		sub.ReduceLocal(op, buf[rLo:rHi], recv)
	}

	// After reduce-scatter, ring position p holds the fully reduced chunk
	// (p+1) mod n, so the allgather circulates bounds rotated by one.
	owned := make([][2]int, n)
	for i := range owned {
		owned[i] = bounds[(i+1)%n]
	}
	return ringAllgatherChunks(ctx, sub, buf, owned, order, self)
}
