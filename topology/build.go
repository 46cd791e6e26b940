package topology

import "fmt"

// kindBuilder places every rank of an N-process Shape onto a Coordinate and,
// for Kind values whose distance needs an explicit physical link structure,
// populates a netGraph alongside. Implemented once per Kind in
// build_fattree.go, build_torus.go, build_dragonfly_topology.go, and
// build_flat.go.
type kindBuilder func(shape Shape) (Placement, *netGraph, error)

var kindBuilders = map[Kind]kindBuilder{
	FatTree:   buildFatTree,
	Torus2D:   buildTorus,
	Torus3D:   buildTorus,
	Dragonfly: buildDragonfly,
	Flat:      buildFlat,
}

// Build is the single orchestrator for the Network Characteristics Model:
// validate the requested shape, compute placement and the optional physical
// link graph, seed default per-tier bandwidth/latency, and derive the
// bisection bandwidth. Any invalid shape (spec.md §7 kind 1) is rejected
// here via ErrInvalidTopologyConfig wrapped with call context; Build never
// panics.
func Build(kind Kind, shape Shape, opts ...BuildOption) (*Model, error) {
	if shape.N <= 0 {
		return nil, fmt.Errorf("Build(%s): world size must be positive: %w", kind, ErrInvalidTopologyConfig)
	}

	fn, ok := kindBuilders[kind]
	if !ok {
		return nil, fmt.Errorf("Build: %w", ErrInvalidTopologyConfig)
	}
	if (kind == Torus2D && len(shape.Dims) != 2) || (kind == Torus3D && len(shape.Dims) != 3) {
		return nil, fmt.Errorf("Build(%s): got %d dimensions: %w", kind, len(shape.Dims), ErrInvalidTopologyConfig)
	}

	placement, net, err := fn(shape)
	if err != nil {
		return nil, fmt.Errorf("Build(%s): %w", kind, err)
	}

	cfg := newBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Model{
		kind:      kind,
		shape:     shape,
		placement: placement,
		net:       net,
		bandwidth: defaultBandwidth(kind),
		latency:   defaultLatency(kind),
		flagged:   make(map[Tier]bool),
	}
	for t, v := range cfg.bandwidth {
		m.bandwidth[t] = v
	}
	for t, v := range cfg.latency {
		m.latency[t] = v
	}
	m.bisectionBandwidth = deriveBisectionBandwidth(kind, shape, m.bandwidth)

	return m, nil
}

// defaultBandwidth seeds the per-tier Mbps figures spec.md §4.B names
// ("compute-edge 10 Gbps, edge-agg 40 Gbps, agg-core 40 Gbps; torus
// dimension links 10 Gbps"); Dragonfly has no spec-given default, so its
// figures are a reasonable extension by analogy to the fat-tree hierarchy
// (documented in DESIGN.md), overridable via WithTierBandwidth.
func defaultBandwidth(kind Kind) map[Tier]float64 {
	switch kind {
	case FatTree:
		return map[Tier]float64{
			TierComputeEdge: 10_000,
			TierEdgeAgg:     40_000,
			TierAggCore:     40_000,
		}
	case Torus2D, Torus3D:
		return map[Tier]float64{
			TierIntraDim:   10_000,
			TierWraparound: 10_000,
		}
	case Dragonfly:
		return map[Tier]float64{
			TierIntraRouter: 40_000,
			TierIntraGroup:  10_000,
			TierInterGroup:  4_000,
		}
	case Flat:
		return map[Tier]float64{TierIntraRack: 10_000}
	default:
		return map[Tier]float64{}
	}
}

// defaultLatency seeds the per-tier microsecond figures spec.md §4.B names
// ("1 µs intra-rack, 2 µs intra-pod, 5 µs cross-pod"), mapped onto each
// Kind's hierarchy in the same order (innermost tier fastest).
func defaultLatency(kind Kind) map[Tier]float64 {
	switch kind {
	case FatTree:
		return map[Tier]float64{
			TierComputeEdge: 1,
			TierEdgeAgg:     2,
			TierAggCore:     5,
		}
	case Torus2D, Torus3D:
		return map[Tier]float64{
			TierIntraDim:   1,
			TierWraparound: 2,
		}
	case Dragonfly:
		return map[Tier]float64{
			TierIntraRouter: 1,
			TierIntraGroup:  2,
			TierInterGroup:  5,
		}
	case Flat:
		return map[Tier]float64{TierIntraRack: 1}
	default:
		return map[Tier]float64{}
	}
}

// deriveBisectionBandwidth computes the approximate minimum aggregate
// bandwidth across a worst-case half/half cut. Spec.md §3 names this as a
// "derived scalar used by bandwidth-dominant regimes" without a formula;
// these are standard order-of-magnitude approximations for each topology
// family, not exact combinatorial minimum cuts.
func deriveBisectionBandwidth(kind Kind, shape Shape, bw map[Tier]float64) float64 {
	half := float64(shape.N) / 2
	switch kind {
	case FatTree:
		return half * bw[TierComputeEdge]
	case Torus2D, Torus3D:
		d0 := 1
		if len(shape.Dims) > 0 && shape.Dims[0] > 0 {
			d0 = shape.Dims[0]
		}
		return 2 * bw[TierIntraDim] * (float64(shape.N) / float64(d0))
	case Dragonfly:
		return float64(shape.Groups) / 2 * bw[TierInterGroup]
	case Flat:
		return half * bw[TierIntraRack]
	default:
		return 0
	}
}
