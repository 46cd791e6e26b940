package oracle

import (
	"context"
	"fmt"
	"math"

	"github.com/mpatel-hpc/topoflow/collective"
	"github.com/mpatel-hpc/topoflow/substrate"
)

// tolerance is the element-wise comparison bound for floating-point
// reductions (spec.md §8); MAX/MIN are compared exactly since they never
// accumulate rounding error.
const tolerance = 1e-9

// chunkBounds mirrors collective's unexported partitioning scheme so the
// oracle can place a rank's allgather contribution at the same offset
// the library itself would use, without depending on collective
// internals.
func chunkBounds(total, parts int) [][2]int {
	bounds := make([][2]int, parts)
	base, rem := total/parts, total%parts
	lo := 0
	for i := 0; i < parts; i++ {
		size := base
		if i < rem {
			size++
		}
		bounds[i] = [2]int{lo, lo + size}
		lo += size
	}
	return bounds
}

func compare(ref, got []float64, tol float64, what string) error {
	if len(ref) != len(got) {
		return fmt.Errorf("oracle: %s length mismatch: reference=%d optimized=%d", what, len(ref), len(got))
	}
	for i := range ref {
		if math.Abs(ref[i]-got[i]) > tol {
			return fmt.Errorf("oracle: %s mismatch at index %d: reference=%v optimized=%v", what, i, ref[i], got[i])
		}
	}
	return nil
}

// CheckBroadcast replays a binomial tree broadcast of original from root
// on fresh buffers and compares it bit-exactly with optimized, the
// result the optimizer's chosen algorithm already produced on this rank.
func CheckBroadcast(ctx context.Context, sub substrate.Substrate, optimized []float64, root int, original []float64) error {
	ref := make([]float64, len(optimized))
	if sub.Rank() == root {
		copy(ref, original)
	}
	if err := collective.BinomialBroadcast(ctx, sub, ref, root); err != nil {
		return fmt.Errorf("oracle: reference broadcast: %w", err)
	}
	return compare(ref, optimized, 0, "broadcast")
}

// CheckReduce replays a binomial tree reduce of localContribution toward
// root and compares the result with optimized (meaningful on root only;
// non-root ranks should pass the optimizer's untouched local buffer and
// are not checked).
func CheckReduce(ctx context.Context, sub substrate.Substrate, optimized []float64, root int, op collective.ReduceOp, localContribution []float64) error {
	ref := append([]float64(nil), localContribution...)
	if err := collective.BinomialReduce(ctx, sub, ref, root, op); err != nil {
		return fmt.Errorf("oracle: reference reduce: %w", err)
	}
	if sub.Rank() != root {
		return nil
	}
	return compare(ref, optimized, tol(op), "reduce")
}

// CheckAllreduce replays a ring allreduce of localContribution and
// compares with optimized. The reference is the same algorithm the
// optimizer dispatches for non-power-of-two N or large m (see optimizer's
// selection policy); in every other case it is a different one.
func CheckAllreduce(ctx context.Context, sub substrate.Substrate, optimized []float64, op collective.ReduceOp, localContribution []float64) error {
	ref := append([]float64(nil), localContribution...)
	if err := collective.RingAllreduce(ctx, sub, nil, ref, op); err != nil {
		return fmt.Errorf("oracle: reference allreduce: %w", err)
	}
	return compare(ref, optimized, tol(op), "allreduce")
}

// CheckAllgather replays a ring allgather of localContribution, placed at
// this rank's chunk offset on a fresh buffer, and compares the fully
// reassembled result with optimized. Ring works for any N, so it is the
// one reference implementation used regardless of which variant the
// optimizer itself dispatched.
func CheckAllgather(ctx context.Context, sub substrate.Substrate, optimized []float64, localContribution []float64) error {
	n := sub.Size()
	ref := make([]float64, len(optimized))
	bounds := chunkBounds(len(optimized), n)
	lo, hi := bounds[sub.Rank()][0], bounds[sub.Rank()][1]
	copy(ref[lo:hi], localContribution)

	if err := collective.RingAllgather(ctx, sub, nil, ref); err != nil {
		return fmt.Errorf("oracle: reference allgather: %w", err)
	}
	return compare(ref, optimized, 0, "allgather")
}

func tol(op collective.ReduceOp) float64 {
	switch op {
	case collective.Max, collective.Min:
		return 0
	default:
		return tolerance
	}
}
