package collective

import (
	"context"

	"github.com/mpatel-hpc/topoflow/substrate"
)

// RecursiveDoublingAllreduce implements the small-message allreduce path
// optimizer's selection policy names separately from halving+doubling:
// log2(N) rounds, each a full-vector exchange with the XOR partner
// followed by a local reduction into the whole buffer, rather than
// halving the owned range each round the way
// RecursiveHalvingDoublingAllreduce does. Fewer rounds than
// halving+doubling's reduce-scatter-then-allgather pair at the cost of
// moving the full buffer every round, which only pays off once m is
// small enough that round count dominates transfer time. Requires a
// power-of-two N; callers (optimizer) select this algorithm only when
// both conditions hold.
func RecursiveDoublingAllreduce(ctx context.Context, sub substrate.Substrate, buf []float64, op ReduceOp) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	self := sub.Rank()
	recv := make([]float64, len(buf))
	rounds := floorLog2(n)

	return roundLoop(ctx, rounds, func(round int) error {
		step := 1 << round
		partner := self ^ step
		tag := tagRecursiveDouble + round
		if err := sub.Send(buf, partner, tag); err != nil {
			return err
		}
		if err := sub.Recv(recv, partner, tag); err != nil {
			return err
		}
		sub.ReduceLocal(op, buf, recv)
		return nil
	})
}
