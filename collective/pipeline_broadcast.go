package collective

import (
	"context"
	"fmt"
	"math"

	"github.com/mpatel-hpc/topoflow/substrate"
	"github.com/mpatel-hpc/topoflow/topology"
)

const defaultPipelineSegments = 4

// EstimatePipelineSegments implements spec.md §4.C item 3's closed-form
// segment count: S minimizing alpha*(N-1+S-1) + (m/S*beta)*(N-1+S-1),
// which for a flat per-hop-cost assumption reduces to
// S ~= sqrt(m*beta*(N-1)/alpha). alpha is per-message latency in
// seconds, beta is seconds-per-element transfer time, m is the element
// count, n is the participant count. The result is clamped to [1, m] and
// is a seed for PipelineBroadcast's segments argument, not recomputed per
// call; no later calibration step adjusts it.
func EstimatePipelineSegments(alpha, beta float64, m, n int) int {
	if m <= 0 {
		return 1
	}
	if n <= 1 || alpha <= 0 {
		return 1
	}
	s := int(math.Sqrt(float64(m) * beta * float64(n-1) / alpha))
	if s < 1 {
		s = 1
	}
	if s > m {
		s = m
	}
	return s
}

// PipelineBroadcast implements spec.md §4.C item 3: the message is cut
// into segments slices and streamed along a topology-aware
// nearest-neighbor chain rooted at root (chain.go's nearestNeighborChain).
// Each interior rank forwards a segment to its chain successor as soon as
// it arrives from its predecessor, rather than waiting for the whole
// buffer, so the last rank finishes roughly N+segments-2 segment-times
// after the root starts instead of N*segments. segments <= 0 selects
// defaultPipelineSegments.
func PipelineBroadcast(ctx context.Context, sub substrate.Substrate, model *topology.Model, buf []float64, root int, segments int) error {
	n := sub.Size()
	if n <= 1 || len(buf) == 0 {
		return nil
	}
	if root < 0 || root >= n {
		return fmt.Errorf("PipelineBroadcast: %w", ErrRootOutOfRange)
	}
	if segments <= 0 {
		segments = defaultPipelineSegments
	}
	if segments > len(buf) {
		segments = len(buf)
	}

	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = (root + i) % n
	}
	chain := ranks
	if model != nil {
		var err error
		chain, err = nearestNeighborChain(model, ranks)
		if err != nil {
			return err
		}
	}

	self := sub.Rank()
	idx := -1
	for i, r := range chain {
		if r == self {
			idx = i
			break
		}
	}

	var predecessor, successor int = -1, -1
	if idx > 0 {
		predecessor = chain[idx-1]
	}
	if idx >= 0 && idx+1 < len(chain) {
		successor = chain[idx+1]
	}

	bounds := chunkBounds(len(buf), segments)
	for s := 0; s < segments; s++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		lo, hi := bounds[s][0], bounds[s][1]
		tag := tagPipeline + s

		if predecessor >= 0 {
			if err := sub.Recv(buf[lo:hi], predecessor, tag); err != nil {
				return err
			}
		}
		if successor >= 0 {
			if err := sub.Send(buf[lo:hi], successor, tag); err != nil {
				return err
			}
		}
	}
	return nil
}
