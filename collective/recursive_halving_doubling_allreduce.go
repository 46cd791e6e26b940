package collective

import (
	"context"

	"github.com/mpatel-hpc/topoflow/substrate"
)

// RecursiveHalvingDoublingAllreduce implements spec.md §4.C item 4: a
// recursive-halving reduce-scatter followed by a recursive-doubling
// allgather, run over the largest power-of-two subset of participants.
// Non-power-of-two N folds the excess processes into neighbors first,
// runs the halving/doubling on the trimmed set, then unfolds.
func RecursiveHalvingDoublingAllreduce(ctx context.Context, sub substrate.Substrate, buf []float64, op ReduceOp) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	self := sub.Rank()

	p := 1 << floorLog2(n)
	extra := n - p

	active := true
	foldPartner := -1
	recvBuf := make([]float64, len(buf))

	if extra > 0 && self < 2*extra {
		if self%2 == 1 {
			if err := sub.Send(buf, self-1, tagFoldUnfold); err != nil {
				return err
			}
			active = false
			foldPartner = self - 1
		} else {
			if err := sub.Recv(recvBuf, self+1, tagFoldUnfold); err != nil {
				return err
			}
			sub.ReduceLocal(op, buf, recvBuf)
			foldPartner = self + 1
		}
	}

	if active {
		var trimmedRank int
		if self < 2*extra {
			trimmedRank = self / 2
		} else {
			trimmedRank = self - extra
		}
		toOriginal := func(tr int) int {
			if tr < extra {
				return tr * 2
			}
			return tr + extra
		}

		lo, hi, err := recursiveHalvingReduceScatter(ctx, sub, buf, op, trimmedRank, p, toOriginal)
		if err != nil {
			return err
		}
		if err := recursiveDoublingAllgather(ctx, sub, buf, trimmedRank, p, toOriginal, lo, hi); err != nil {
			return err
		}
	}

	if extra > 0 && foldPartner >= 0 {
		if self < 2*extra && self%2 == 0 {
			if err := sub.Send(buf, foldPartner, tagFoldUnfold+1); err != nil {
				return err
			}
		} else if self%2 == 1 {
			if err := sub.Recv(buf, foldPartner, tagFoldUnfold+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// recursiveHalvingReduceScatter runs the butterfly reduce-scatter over a
// power-of-two group of size p, addressed by trimmedRank (0..p-1) and
// translated back to real substrate ranks via toOriginal. Returns the
// [lo,hi) slice of buf this process owns the fully-reduced value for.
func recursiveHalvingReduceScatter(ctx context.Context, sub substrate.Substrate, buf []float64, op ReduceOp, trimmedRank, p int, toOriginal func(int) int) (int, int, error) {
	lo, hi := 0, len(buf)
	for step := p / 2; step >= 1; step /= 2 {
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		default:
		}
		partner := toOriginal(trimmedRank ^ step)
		mid := lo + (hi-lo)/2
		tag := tagHalvingReduce + step

		if trimmedRank&step == 0 {
			recv := make([]float64, mid-lo)
			if err := sub.Send(buf[mid:hi], partner, tag); err != nil {
				return 0, 0, err
			}
			if err := sub.Recv(recv, partner, tag); err != nil {
				return 0, 0, err
			}
			sub.ReduceLocal(op, buf[lo:mid], recv)
			hi = mid
		} else {
			recv := make([]float64, hi-mid)
			if err := sub.Send(buf[lo:mid], partner, tag); err != nil {
				return 0, 0, err
			}
			if err := sub.Recv(recv, partner, tag); err != nil {
				return 0, 0, err
			}
			sub.ReduceLocal(op, buf[mid:hi], recv)
			lo = mid
		}
	}
	return lo, hi, nil
}

// recursiveDoublingAllgather mirrors recursiveHalvingReduceScatter in
// reverse: starting from the [lo,hi) chunk this process owns, it
// exchanges with the same partners in reverse order, growing its known
// contiguous range until every process holds the full buffer. Partners
// first swap their [lo,hi) bounds, so the two ranges may differ in size.
func recursiveDoublingAllgather(ctx context.Context, sub substrate.Substrate, buf []float64, trimmedRank, p int, toOriginal func(int) int, lo, hi int) error {
	for step := 1; step <= p/2; step *= 2 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		partner := toOriginal(trimmedRank ^ step)
		tag := tagDoublingGather + step
		span := make([]float64, 2)
		if err := sub.Send([]float64{float64(lo), float64(hi)}, partner, tag); err != nil {
			return err
		}
		if err := sub.Recv(span, partner, tag); err != nil {
			return err
		}
		pLo, pHi := int(span[0]), int(span[1])

		if trimmedRank&step == 0 {
			recv := make([]float64, pHi-pLo)
			if err := sub.Send(buf[lo:hi], partner, tag); err != nil {
				return err
			}
			if err := sub.Recv(recv, partner, tag); err != nil {
				return err
			}
			copy(buf[pLo:pHi], recv)
			hi = pHi
		} else {
			recv := make([]float64, pHi-pLo)
			if err := sub.Send(buf[lo:hi], partner, tag); err != nil {
				return err
			}
			if err := sub.Recv(recv, partner, tag); err != nil {
				return err
			}
			copy(buf[pLo:pHi], recv)
			lo = pLo
		}
	}
	return nil
}
