package collective

import (
	"context"
	"fmt"

	"github.com/mpatel-hpc/topoflow/substrate"
)

// BinomialReduce implements spec.md §4.C item 7: reduce via binomial tree
// toward root, applying op at each interior node. It is the mirror image
// of BinomialBroadcast's round structure, walked from the largest step
// down to the smallest: a process with root-relative rank r receives and
// folds in r+step's contribution while r < step, or forwards its own
// accumulated buffer to r-step and retires once r falls in [step, 2*step).
//
// Non-commutative operators still compose correctly here since every
// receive folds the incoming value on the right of the local
// accumulator in round order; ring/recursive algorithms that reorder
// contributions must fall back to this one for non-commutative ops
// (ReduceOp.Commutative(), spec.md §7 kind 3).
func BinomialReduce(ctx context.Context, sub substrate.Substrate, buf []float64, root int, op ReduceOp) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	if root < 0 || root >= n {
		return fmt.Errorf("BinomialReduce: %w", ErrRootOutOfRange)
	}

	self := sub.Rank()
	relRank := ((self-root)%n + n) % n
	rounds := ceilLog2(n)
	recvBuf := make([]float64, len(buf))

	for round := rounds - 1; round >= 0; round-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		step := 1 << round
		tag := tagBinomialReduce + round
		switch {
		case relRank < step && relRank+step < n:
			partner := (root + relRank + step) % n
			if err := sub.Recv(recvBuf, partner, tag); err != nil {
				return err
			}
			sub.ReduceLocal(op, buf, recvBuf)
		case relRank >= step && relRank < 2*step:
			partner := (root + relRank - step) % n
			if err := sub.Send(buf, partner, tag); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}
