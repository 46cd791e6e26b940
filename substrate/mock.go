package substrate

import (
	"sync"
	"time"
)

// mockKey identifies one logical FIFO channel: a (src, dst, tag) triple
// within a single communicator. Two separate locks guard the switchboard
// (one for the channel table, one embedded in the cyclic barrier) rather
// than a single coarse lock, the same split-by-concern discipline lvlath's
// core.Graph applies to its vertex and edge/adjacency mutexes.
type mockKey struct {
	src, dst, tag int
}

// group is the shared "software switch" backing every endpoint returned by
// NewMockGroup: a synchronous, in-process stand-in for a real message-
// passing transport, delivering messages through per-tuple buffered
// channels so that Send/Recv pairs rendezvous in FIFO order per
// (src, dst, tag), exactly as substrate.Substrate documents.
type group struct {
	mu       sync.Mutex
	channels map[mockKey]chan []float64
	size     int
	barrier  *cyclicBarrier
	epoch    time.Time
}

// NewMockGroup builds size independent substrate.Substrate endpoints that
// share one in-process switchboard. It is the substrate used throughout
// this repository's tests and examples in place of a real MPI-like
// transport.
func NewMockGroup(size int) []Substrate {
	g := &group{
		channels: make(map[mockKey]chan []float64),
		size:     size,
		barrier:  newCyclicBarrier(size),
		epoch:    time.Now(),
	}
	endpoints := make([]Substrate, size)
	for r := 0; r < size; r++ {
		endpoints[r] = &mockEndpoint{rank: r, g: g}
	}
	return endpoints
}

// channel returns (creating if necessary) the buffered FIFO channel for k.
// A generous fixed depth avoids deadlock for algorithms that legitimately
// pipeline several in-flight messages under one tag (e.g. pipeline
// broadcast's segment stream) without requiring unbounded memory.
const mockChannelDepth = 256

func (g *group) channel(k mockKey) chan []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.channels[k]
	if !ok {
		ch = make(chan []float64, mockChannelDepth)
		g.channels[k] = ch
	}
	return ch
}

// mockEndpoint is one rank's view of a group.
type mockEndpoint struct {
	rank int
	g    *group
}

func (e *mockEndpoint) Rank() int { return e.rank }
func (e *mockEndpoint) Size() int { return e.g.size }

func (e *mockEndpoint) Send(buf []float64, dst, tag int) error {
	cp := make([]float64, len(buf))
	copy(cp, buf)
	e.g.channel(mockKey{src: e.rank, dst: dst, tag: tag}) <- cp
	return nil
}

func (e *mockEndpoint) Recv(buf []float64, src, tag int) error {
	cp := <-e.g.channel(mockKey{src: src, dst: e.rank, tag: tag})
	if len(cp) != len(buf) {
		return ErrLengthMismatch
	}
	copy(buf, cp)
	return nil
}

func (e *mockEndpoint) Barrier() {
	e.g.barrier.wait()
}

func (e *mockEndpoint) Wtime() float64 {
	return time.Since(e.g.epoch).Seconds()
}

func (e *mockEndpoint) ReduceLocal(op Op, dst, src []float64) {
	op.Apply(dst, src)
}

// cyclicBarrier is a reusable (generation-counted) barrier, the minimal
// primitive substrate.Substrate.Barrier needs. No pack example ships a
// reusable barrier type, so this is built directly on sync.Cond — the
// standard-library tool for exactly this rendezvous shape; justified in
// DESIGN.md as the one piece of test-only scaffolding with no ecosystem
// library in the corpus to reach for instead.
type cyclicBarrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	gen   uint64
}

func newCyclicBarrier(n int) *cyclicBarrier {
	b := &cyclicBarrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *cyclicBarrier) wait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.n <= 1 {
		return
	}
	gen := b.gen
	b.count++
	if b.count == b.n {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
}
