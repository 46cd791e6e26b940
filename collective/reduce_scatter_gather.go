package collective

import (
	"context"
	"fmt"

	"github.com/mpatel-hpc/topoflow/substrate"
)

// halvingBounds recomputes, purely from (total, p, trimmedRank), the
// [lo,hi) slice recursiveHalvingReduceScatter leaves trimmedRank owning
// after its butterfly phase over a power-of-two group of size p — the
// same bisection, run without any communication, so the gather phase
// below can address each sender's slice without an extra round of
// metadata exchange.
func halvingBounds(total, p, trimmedRank int) (int, int) {
	lo, hi := 0, total
	for step := p / 2; step >= 1; step /= 2 {
		mid := lo + (hi-lo)/2
		if trimmedRank&step == 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return lo, hi
}

// ReduceScatterGather implements the large-message reduce path the
// optimizer's selection policy names separately from BinomialReduce: a
// recursive-halving reduce-scatter (the same butterfly phase
// RecursiveHalvingDoublingAllreduce's first half runs, here addressed
// root-relative rather than rank-relative) leaves each participant
// holding the fully-reduced value for one contiguous slice of buf; a
// single-level gather toward root then reassembles the whole buffer
// there. Non-power-of-two N folds excess processes into neighbors first,
// exactly as RecursiveHalvingDoublingAllreduce does, except the folded-
// away partner never unfolds afterward since only root needs the final
// buffer.
func ReduceScatterGather(ctx context.Context, sub substrate.Substrate, buf []float64, root int, op ReduceOp) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	if root < 0 || root >= n {
		return fmt.Errorf("ReduceScatterGather: %w", ErrRootOutOfRange)
	}
	self := sub.Rank()
	relRank := ((self-root)%n + n) % n

	p := 1 << floorLog2(n)
	extra := n - p

	if extra > 0 && relRank < 2*extra {
		if relRank%2 == 1 {
			dest := (root + relRank - 1) % n
			return sub.Send(buf, dest, tagReduceFold)
		}
		recvBuf := make([]float64, len(buf))
		src := (root + relRank + 1) % n
		if err := sub.Recv(recvBuf, src, tagReduceFold); err != nil {
			return err
		}
		sub.ReduceLocal(op, buf, recvBuf)
	}

	var trimmedRank int
	if relRank < 2*extra {
		trimmedRank = relRank / 2
	} else {
		trimmedRank = relRank - extra
	}
	toOriginal := func(tr int) int {
		if tr < extra {
			return (root + tr*2) % n
		}
		return (root + tr + extra) % n
	}

	lo, hi, err := recursiveHalvingReduceScatter(ctx, sub, buf, op, trimmedRank, p, toOriginal)
	if err != nil {
		return err
	}

	if trimmedRank != 0 {
		return sub.Send(buf[lo:hi], root, tagReduceGather+trimmedRank)
	}

	for tr := 1; tr < p; tr++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		src := toOriginal(tr)
		blo, bhi := halvingBounds(len(buf), p, tr)
		if err := sub.Recv(buf[blo:bhi], src, tagReduceGather+tr); err != nil {
			return err
		}
	}
	return nil
}
