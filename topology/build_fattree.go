package topology

import "fmt"

// buildFatTree lays out an N-ary fat-tree's compute hosts over
// (pod, edge, slot) per spec.md §4.B: pods = k, agg_per_pod = edge_per_pod
// = compute_per_edge = k/2, cores = (k/2)^2, rank =
// pod*(k/2)^2 + edge*(k/2) + slot.
func buildFatTree(shape Shape) (Placement, *netGraph, error) {
	k := shape.K
	if k <= 0 || k%2 != 0 {
		return nil, nil, fmt.Errorf("fat-tree k=%d must be even and positive: %w", k, ErrInvalidTopologyConfig)
	}
	half := k / 2
	expectedN := k * half * half
	if shape.N != expectedN {
		return nil, nil, fmt.Errorf("fat-tree k=%d implies world size %d, got %d: %w",
			k, expectedN, shape.N, ErrInvalidTopologyConfig)
	}

	placement := make(Placement, shape.N)
	for pod := 0; pod < k; pod++ {
		for edge := 0; edge < half; edge++ {
			for slot := 0; slot < half; slot++ {
				rank := pod*half*half + edge*half + slot
				placement[rank] = Coordinate{A: pod, B: edge, C: slot}
			}
		}
	}
	return placement, nil, nil
}
