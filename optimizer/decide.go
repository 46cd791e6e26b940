package optimizer

import (
	"github.com/mpatel-hpc/topoflow/collective"
	"github.com/mpatel-hpc/topoflow/topology"
)

// Algorithm names recorded in decision.algorithm, the report's
// algorithm_chosen column, and the decisions metric's label.
const (
	algoBinomialTree        = "binomial-tree"
	algoScatterAllgather    = "scatter-allgather"
	algoPipeline            = "pipeline"
	algoRecursiveDoubling   = "recursive-doubling"
	algoHalvingDoubling     = "halving-doubling"
	algoRing                = "ring"
	algoReduceScatterGather = "reduce-scatter-gather"
)

// decide is the DECIDE stage of spec.md §4.D's DECIDE -> DISPATCH ->
// EXECUTE -> REPORT state machine: a pure function of the collective
// shape, world size, message size, and (for reduce/allreduce) the
// reduction operator, consulting model only for the topology-shape
// checks broadcast's pipeline branch and the ring-order algorithms need.
// It never touches the cache or the substrate — lookupOrDecide wraps it
// with caching.
func decide(kind opKind, n, bytes int, op collective.ReduceOp, cfg Config, model *topology.Model) decision {
	switch kind {
	case opBroadcast:
		return decideBroadcast(n, bytes, cfg, model)
	case opReduce:
		return decideReduce(n, bytes, op, cfg)
	case opAllreduce:
		return decideAllreduce(n, bytes, op, cfg)
	case opAllgather:
		return decideAllgather(n, bytes, cfg)
	default:
		return decision{algorithm: algoBinomialTree}
	}
}

// decideBroadcast implements spec.md §4.D's broadcast policy: binomial
// tree for small messages, scatter-allgather for large messages on wide
// enough groups, a topology-aware pipeline when the model exposes a
// long-diameter linear structure (torus), binomial tree otherwise.
func decideBroadcast(n, bytes int, cfg Config, model *topology.Model) decision {
	switch {
	case bytes <= cfg.TSmall:
		return decision{algorithm: algoBinomialTree}
	case bytes >= cfg.TLarge && n >= 8:
		return decision{algorithm: algoScatterAllgather}
	case hasLongLinearDiameter(model):
		return decision{algorithm: algoPipeline, segments: estimateSegments(model, bytes, n)}
	default:
		return decision{algorithm: algoBinomialTree}
	}
}

// decideReduce implements spec.md §4.D's reduce policy: binomial tree
// toward root for small m, reduce-scatter + gather-to-root for large m.
// A non-commutative operator (spec.md §7 kind 3) always forces the
// binomial tree, since it is the one algorithm here that folds
// contributions in a fixed round order rather than reordering them.
func decideReduce(n, bytes int, op collective.ReduceOp, cfg Config) decision {
	if !op.Commutative() {
		return decision{algorithm: algoBinomialTree}
	}
	if bytes <= cfg.TSmall {
		return decision{algorithm: algoBinomialTree}
	}
	return decision{algorithm: algoReduceScatterGather}
}

// decideAllreduce implements spec.md §4.D's allreduce policy: recursive
// doubling (full-vector exchange) for small messages on a power-of-two
// N, halving+doubling for any other power-of-two N, ring for
// non-power-of-two N. A non-commutative operator forces the binomial
// tree reduce+broadcast fallback (spec.md §7 kind 3) regardless of N or
// m, since ring and halving+doubling both fold contributions out of
// rank order.
func decideAllreduce(n, bytes int, op collective.ReduceOp, cfg Config) decision {
	if !op.Commutative() {
		return decision{algorithm: algoBinomialTree}
	}
	switch {
	case isPowerOfTwo(n) && bytes <= cfg.TSmall:
		return decision{algorithm: algoRecursiveDoubling}
	case isPowerOfTwo(n):
		return decision{algorithm: algoHalvingDoubling}
	default:
		return decision{algorithm: algoRing}
	}
}

// decideAllgather implements spec.md §4.D's allgather policy: recursive
// doubling for power-of-two N with small per-rank chunks, ring
// otherwise.
func decideAllgather(n, bytes int, cfg Config) decision {
	chunkBytes := bytes
	if n > 0 {
		chunkBytes = bytes / n
	}
	if isPowerOfTwo(n) && chunkBytes <= cfg.TSmall {
		return decision{algorithm: algoRecursiveDoubling}
	}
	return decision{algorithm: algoRing}
}

// hasLongLinearDiameter reports whether model's topology exposes the
// "long-diameter linear structure" spec.md §4.D names as the pipeline
// broadcast trigger: a torus, whose diameter grows linearly with its
// per-dimension extent rather than logarithmically the way a fat-tree
// or dragonfly's does.
func hasLongLinearDiameter(model *topology.Model) bool {
	if model == nil {
		return false
	}
	switch model.Kind() {
	case topology.Torus2D, topology.Torus3D:
		return true
	default:
		return false
	}
}

// estimateSegments seeds PipelineBroadcast's segment count from model's
// intra-hop alpha/beta (falling back to the flat-topology baseline
// EstimatePipelineSegments's doc comment assumes when model carries no
// usable tier figures), per spec.md §4.C item 3 and §9's "closed-form
// estimate from alpha/beta is used as a seed."
func estimateSegments(model *topology.Model, bytes, n int) int {
	const (
		fallbackAlphaMicros   = 1.0
		fallbackBandwidthMbps = 10000.0
	)
	alphaMicros, bandwidthMbps := fallbackAlphaMicros, fallbackBandwidthMbps
	if model != nil {
		for _, t := range []topology.Tier{topology.TierIntraDim, topology.TierIntraRack, topology.TierIntraRouter} {
			if a := model.TierLatency(t); a > 0 {
				alphaMicros = a
			}
			if b := model.TierBandwidth(t); b > 0 {
				bandwidthMbps = b
			}
		}
	}

	alphaSeconds := alphaMicros * 1e-6
	// betaSecondsPerElement: seconds to transfer one float64 element
	// (datatypeSize bytes, 8 bits/byte) at bandwidthMbps megabits/second.
	betaSecondsPerElement := float64(datatypeSize*8) / (bandwidthMbps * 1e6)

	count := bytes / datatypeSize
	if count < 1 {
		count = 1
	}
	return collective.EstimatePipelineSegments(alphaSeconds, betaSecondsPerElement, count, n)
}

// isPowerOfTwo reports whether n is a positive power of two. Duplicated
// from collective's unexported helper of the same name rather than
// exported there solely for this one-line check — matching bucket()'s
// own small-helper-over-dependency shape in cache.go.
func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
