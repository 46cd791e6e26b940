package topology

// Kind is a closed, tagged variant over the topologies this package knows
// how to build. Distance and placement are computed per Kind through a
// switch in model.go, never through an interface method set — this keeps
// Model.Distance branchless after the tag check (spec.md §9's "topology
// polymorphism" design note).
type Kind int

const (
	// FatTree is a k-ary fat-tree: k pods, each with k/2 edge and k/2
	// aggregation switches, served by (k/2)^2 core switches.
	FatTree Kind = iota
	// Torus2D is a 2-dimensional torus with wrap-around links.
	Torus2D
	// Torus3D is a 3-dimensional torus with wrap-around links.
	Torus3D
	// Dragonfly is a two-level hierarchy of groups, each an all-to-all of
	// routers, with one global link per router pair.
	Dragonfly
	// Flat is a generic mesh where every pair of ranks is one hop apart.
	Flat
)

// String returns the canonical lower-case name of k, or "unknown" for any
// value outside the closed set above.
func (k Kind) String() string {
	switch k {
	case FatTree:
		return "fat-tree"
	case Torus2D:
		return "torus-2d"
	case Torus3D:
		return "torus-3d"
	case Dragonfly:
		return "dragonfly"
	case Flat:
		return "flat"
	default:
		return "unknown"
	}
}

// Tier names one hierarchy level of the interconnect. Not every Kind
// populates every Tier; a Kind's Model only ever carries the subset
// relevant to it, the rest are simply absent from the bandwidth/latency
// maps.
type Tier int

const (
	TierComputeEdge Tier = iota
	TierEdgeAgg
	TierAggCore
	TierIntraRack
	TierIntraPod
	TierCrossPod
	TierIntraDim
	TierWraparound
	TierIntraRouter
	TierIntraGroup
	TierInterGroup
)

// String returns a human-readable tier name, used in log fields and the
// CSV report.
func (t Tier) String() string {
	switch t {
	case TierComputeEdge:
		return "compute-edge"
	case TierEdgeAgg:
		return "edge-agg"
	case TierAggCore:
		return "agg-core"
	case TierIntraRack:
		return "intra-rack"
	case TierIntraPod:
		return "intra-pod"
	case TierCrossPod:
		return "cross-pod"
	case TierIntraDim:
		return "intra-dim"
	case TierWraparound:
		return "wraparound"
	case TierIntraRouter:
		return "intra-router"
	case TierIntraGroup:
		return "intra-group"
	case TierInterGroup:
		return "inter-group"
	default:
		return "unknown-tier"
	}
}

// Coordinate is a topology-specific process location, interpreted per
// Kind: (pod, edge, slot) for FatTree; (x, y, z) for Torus2D/Torus3D (z
// unused in 2D); (group, router, host) for Dragonfly; unused for Flat.
type Coordinate struct {
	A, B, C int
}

// Placement maps a rank to its topology coordinate. It is a bijection for
// FatTree and Torus layouts (every coordinate slot is occupied by exactly
// one rank); Dragonfly and Flat placements are likewise total but are not
// asserted bijective since their coordinate space can exceed world size
// (spare router/host slots).
type Placement map[int]Coordinate

// Shape carries whichever shape parameters the requested Kind consumes;
// fields unused by a given Kind are ignored by Build.
type Shape struct {
	// K is the fat-tree radix (FatTree only, must be even and positive).
	K int
	// Dims holds the per-dimension extents for Torus2D (len 2) or Torus3D
	// (len 3); every entry must be >= 1.
	Dims []int
	// Groups, RoutersPerGroup, HostsPerRouter describe a Dragonfly; their
	// product must equal N.
	Groups, RoutersPerGroup, HostsPerRouter int
	// N is the world size, required for every Kind (for FatTree and
	// Dragonfly it must also match the shape's implied host count).
	N int
}

// BuildOption customizes a Model before Build finalizes it, following the
// resolve-once functional-options idiom used throughout this repository.
type BuildOption func(*buildConfig)

// buildConfig accumulates BuildOption values before Build derives the
// final Model from it.
type buildConfig struct {
	bandwidth map[Tier]float64
	latency   map[Tier]float64
}

func newBuildConfig() *buildConfig {
	return &buildConfig{
		bandwidth: make(map[Tier]float64),
		latency:   make(map[Tier]float64),
	}
}

// WithTierBandwidth overrides the default Mbps figure Build assigns to
// tier for the requested Kind.
func WithTierBandwidth(tier Tier, mbps float64) BuildOption {
	return func(c *buildConfig) { c.bandwidth[tier] = mbps }
}

// WithTierLatency overrides the default microsecond figure Build assigns
// to tier for the requested Kind.
func WithTierLatency(tier Tier, microseconds float64) BuildOption {
	return func(c *buildConfig) { c.latency[tier] = microseconds }
}
