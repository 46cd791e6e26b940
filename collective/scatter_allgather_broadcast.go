package collective

import (
	"context"
	"fmt"

	"github.com/mpatel-hpc/topoflow/substrate"
)

type scatterSend struct {
	to     int
	lo, hi int
}

// scatterPlan computes, purely from (rr, n), the unique receive event and
// ordered list of sends a process at root-relative rank rr performs during
// a binomial scatter of n chunks out of [0,n). The split tree is
// deterministic (same recursion every process runs locally), so no
// process needs to be told its role in advance: rr==0 starts as the sole
// owner of the whole range and repeatedly hands its upper half to the
// rank at that half's start, while every other rr descends the same
// split tree until it lands on the unique point where it receives.
func scatterPlan(rr, n int) (recvFrom, recvLo, recvHi int, sends []scatterSend) {
	lo, hi := 0, n
	recvFrom = -1
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		switch {
		case lo == rr:
			sends = append(sends, scatterSend{to: mid, lo: mid, hi: hi})
			hi = mid
		case rr == mid:
			recvFrom = lo
			recvLo, recvHi = mid, hi
			lo = mid
		case rr < mid:
			hi = mid
		default:
			lo = mid
		}
	}
	if recvFrom < 0 {
		recvLo, recvHi = rr, rr
	}
	return recvFrom, recvLo, recvHi, sends
}

// binomialScatter distributes buf's N chunks (chunkBounds(len(buf), N))
// from root across the group in ceil(log2 N) tree levels: every interior
// node splits its currently-owned contiguous chunk range in half and
// hands the upper half to the rank that will own it from here on. After
// this call, rank r holds a correct copy only of its own chunk
// (chunkBounds(len(buf), n)[relRank]); the rest of buf is untouched.
func binomialScatter(ctx context.Context, sub substrate.Substrate, buf []float64, root int) error {
	n := sub.Size()
	bounds := chunkBounds(len(buf), n)
	self := sub.Rank()
	relRank := ((self-root)%n + n) % n

	recvFrom, recvLo, recvHi, sends := scatterPlan(relRank, n)

	if recvFrom >= 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		source := (root + recvFrom) % n
		lo, hi := bounds[recvLo][0], bounds[recvHi-1][1]
		if err := sub.Recv(buf[lo:hi], source, tagScatter); err != nil {
			return err
		}
	}
	for _, s := range sends {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		dest := (root + s.to) % n
		lo, hi := bounds[s.lo][0], bounds[s.hi-1][1]
		if err := sub.Send(buf[lo:hi], dest, tagScatter); err != nil {
			return err
		}
	}
	return nil
}

// ScatterAllgatherBroadcast implements spec.md §4.C item 2: the
// bandwidth-dominant broadcast for large messages. Phase 1 scatters
// m/N-sized chunks out from root via a binomial tree (binomialScatter);
// phase 2 reassembles the full buffer on every rank via recursive-doubling
// allgather when N is a power of two, or ring allgather otherwise.
func ScatterAllgatherBroadcast(ctx context.Context, sub substrate.Substrate, buf []float64, root int) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	if root < 0 || root >= n {
		return fmt.Errorf("ScatterAllgatherBroadcast: %w", ErrRootOutOfRange)
	}

	if err := binomialScatter(ctx, sub, buf, root); err != nil {
		return err
	}

	self := sub.Rank()
	relRank := ((self-root)%n + n) % n
	bounds := chunkBounds(len(buf), n)

	if isPowerOfTwo(n) {
		toOriginal := func(tr int) int { return (root + tr) % n }
		lo, hi := bounds[relRank][0], bounds[relRank][1]
		return recursiveDoublingAllgather(ctx, sub, buf, relRank, n, toOriginal, lo, hi)
	}

	identity := make([]int, n)
	for i := range identity {
		identity[i] = (root + i) % n
	}
	return ringAllgatherChunks(ctx, sub, buf, bounds, identity, self)
}
