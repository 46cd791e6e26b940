package collective

import (
	"container/heap"

	"github.com/mpatel-hpc/topoflow/topology"
)

// nearestNeighborChain returns a permutation of ranks starting at
// ranks[0], greedily extended by the topologically nearest unvisited
// rank at each step (model.Distance). Used by pipeline broadcast to pick
// its linear chain and by ring allreduce/allgather to pick ring adjacency,
// so both "shape a chain" and "shape a ring" algorithms share one
// ordering primitive.
//
// Candidate selection at each step uses a small container/heap min-heap,
// exactly as this repository's shortest-path selection does: push every
// unvisited candidate's distance from the current tail, pop the minimum,
// and skip entries that were already visited by the time they're popped
// (lazy deletion rather than a decrease-key operation). Equal distances
// go to the lower rank, so every process computes the same chain.
func nearestNeighborChain(model *topology.Model, ranks []int) ([]int, error) {
	if len(ranks) <= 1 {
		out := make([]int, len(ranks))
		copy(out, ranks)
		return out, nil
	}

	visited := make(map[int]bool, len(ranks))
	order := make([]int, 0, len(ranks))

	current := ranks[0]
	visited[current] = true
	order = append(order, current)

	remaining := make(map[int]bool, len(ranks)-1)
	for _, r := range ranks[1:] {
		remaining[r] = true
	}

	for len(order) < len(ranks) {
		pq := &rankHeap{}
		heap.Init(pq)
		for r := range remaining {
			d, err := model.Distance(current, r)
			if err != nil {
				return nil, err
			}
			heap.Push(pq, rankDist{rank: r, dist: d})
		}
		for pq.Len() > 0 {
			next := heap.Pop(pq).(rankDist)
			if !remaining[next.rank] {
				continue
			}
			visited[next.rank] = true
			delete(remaining, next.rank)
			order = append(order, next.rank)
			current = next.rank
			break
		}
	}
	return order, nil
}

type rankDist struct {
	rank int
	dist int
}

type rankHeap []rankDist

func (h rankHeap) Len() int            { return len(h) }
func (h rankHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].rank < h[j].rank
}
func (h rankHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *rankHeap) Push(x interface{}) { *h = append(*h, x.(rankDist)) }
func (h *rankHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
