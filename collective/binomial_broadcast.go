package collective

import (
	"context"
	"fmt"

	"github.com/mpatel-hpc/topoflow/substrate"
)

// BinomialBroadcast implements spec.md §4.C item 1: in ceil(log2 N)
// rounds, every process that already has the data (root-relative rank
// r < 2^round) forwards it to r+2^round, wrapped around the root-shifted
// ring. Complexity ceil(log2 N)*(alpha + m*beta).
//
// Grounded on this repository's queue/round BFS traversal shape —
// "OnEnqueue"/"OnVisit" become round-completion sends/receives here,
// re-targeted from graph traversal to message rounds.
func BinomialBroadcast(ctx context.Context, sub substrate.Substrate, buf []float64, root int) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	if root < 0 || root >= n {
		return fmt.Errorf("BinomialBroadcast: %w", ErrRootOutOfRange)
	}

	self := sub.Rank()
	relRank := ((self-root)%n + n) % n
	rounds := ceilLog2(n)
	hasData := relRank == 0

	return roundLoop(ctx, rounds, func(round int) error {
		step := 1 << round
		tag := tagBinomialBroadcast + round
		switch {
		case hasData && relRank+step < n:
			target := (root + relRank + step) % n
			return sub.Send(buf, target, tag)
		case !hasData && relRank >= step && relRank < 2*step:
			source := (root + relRank - step) % n
			if err := sub.Recv(buf, source, tag); err != nil {
				return err
			}
			hasData = true
		}
		return nil
	})
}
