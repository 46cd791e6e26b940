package topology

import "fmt"

// Model is the Network Characteristics value object: topology kind, shape,
// process placement, per-tier bandwidth/latency, and the derived distance
// function every collective algorithm routes against.
//
// A Model is read-only after Build returns, with one exception: the
// measurement harness's Calibrate pass may overwrite tier bandwidth/latency
// and flag a tier low-confidence immediately after construction, before the
// model is handed to an optimizer. Every other accessor is safe for
// unsynchronized concurrent reads.
type Model struct {
	kind  Kind
	shape Shape

	placement Placement
	net       *netGraph // non-nil only for Flat and Dragonfly

	bandwidth map[Tier]float64 // Mbps
	latency   map[Tier]float64 // microseconds
	flagged   map[Tier]bool    // low-confidence tiers (spec.md §3 invariant note)

	bisectionBandwidth float64
}

// Kind returns the model's topology kind.
func (m *Model) Kind() Kind { return m.kind }

// WorldSize returns the number of participating ranks.
func (m *Model) WorldSize() int { return m.shape.N }

// Shape returns a copy of the shape parameters Build was given.
func (m *Model) Shape() Shape { return m.shape }

// Placement returns a defensive copy of the rank-to-coordinate map.
func (m *Model) Placement() Placement {
	out := make(Placement, len(m.placement))
	for r, c := range m.placement {
		out[r] = c
	}
	return out
}

// CoordinateOf returns rank's topology coordinate.
func (m *Model) CoordinateOf(rank int) (Coordinate, error) {
	c, ok := m.placement[rank]
	if !ok {
		return Coordinate{}, fmt.Errorf("CoordinateOf(%d): %w", rank, ErrRankOutOfRange)
	}
	return c, nil
}

// TierBandwidth returns the Mbps figure for tier, or 0 if the tier is not
// populated by this Kind.
func (m *Model) TierBandwidth(t Tier) float64 { return m.bandwidth[t] }

// TierLatency returns the microsecond figure for tier, or 0 if the tier is
// not populated by this Kind.
func (m *Model) TierLatency(t Tier) float64 { return m.latency[t] }

// Tiers returns the set of Tier values this Kind populates, in
// unspecified order. Used by the measurement harness to know which tiers
// to calibrate for a given model.
func (m *Model) Tiers() []Tier {
	out := make([]Tier, 0, len(m.bandwidth))
	for t := range m.bandwidth {
		out = append(out, t)
	}
	return out
}

// TierFlagged reports whether Calibrate marked tier low-confidence.
func (m *Model) TierFlagged(t Tier) bool { return m.flagged[t] }

// SetTierCharacteristics overwrites the measured bandwidth/latency for
// tier. Exported for measure.Harness.Calibrate; library code otherwise
// treats Model as immutable.
func (m *Model) SetTierCharacteristics(t Tier, mbps, microseconds float64) {
	m.bandwidth[t] = mbps
	m.latency[t] = microseconds
}

// FlagTier marks tier low-confidence, per spec.md §3's invariant note:
// "if a measured sample violates [monotonicity], the model records the
// measured value but flags the tier."
func (m *Model) FlagTier(t Tier) { m.flagged[t] = true }

// HasLinkGraph reports whether this Kind builds an explicit physical link
// graph at all (Flat and Dragonfly do; FatTree and Torus2D/3D compute
// distance from coordinates alone and never populate one). Callers that
// want to treat "no link graph" differently from "graph says unlinked"
// (measure.Harness.MeasureAllToAllBandwidth's all-to-all sweep, for one)
// check this before consulting HasPhysicalLink.
func (m *Model) HasLinkGraph() bool { return m.net != nil }

// HasPhysicalLink reports whether a and b (ranks) are directly linked in
// the underlying physical link graph. Only meaningful for Flat and
// Dragonfly, which are the only kinds that build one; it returns false for
// any other Kind since their distance is computed from coordinates alone
// — callers that need to distinguish that from a real "not linked" answer
// should check HasLinkGraph first.
func (m *Model) HasPhysicalLink(a, b int) bool {
	if m.net == nil {
		return false
	}
	return m.net.hasLink(a, b)
}

// PhysicalLinkCount returns the number of links in the underlying physical
// link graph, or 0 for Kinds that don't build one.
func (m *Model) PhysicalLinkCount() int {
	if m.net == nil {
		return 0
	}
	return m.net.linkCount()
}

// BisectionBandwidth returns the derived aggregate bandwidth across the
// topology's narrowest cut, used by bandwidth-dominant selection policies.
func (m *Model) BisectionBandwidth() float64 { return m.bisectionBandwidth }

// Distance returns the hop count between ra and rb under the model's
// routing, per the closed-form rule for each Kind (spec.md §4.B). It never
// uses virtual dispatch: the switch below is the one and only distance
// computation site.
func (m *Model) Distance(ra, rb int) (int, error) {
	if ra < 0 || ra >= m.shape.N || rb < 0 || rb >= m.shape.N {
		return 0, fmt.Errorf("Distance(%d,%d): %w", ra, rb, ErrRankOutOfRange)
	}
	if ra == rb {
		return 0, nil
	}
	switch m.kind {
	case FatTree:
		return m.fatTreeDistance(ra, rb), nil
	case Torus2D, Torus3D:
		return m.torusDistance(ra, rb), nil
	case Dragonfly:
		return m.dragonflyDistance(ra, rb), nil
	case Flat:
		return 1, nil
	default:
		return 0, fmt.Errorf("Distance: %w", ErrInvalidTopologyConfig)
	}
}

func (m *Model) fatTreeDistance(ra, rb int) int {
	ca, cb := m.placement[ra], m.placement[rb]
	switch {
	case ca.A == cb.A && ca.B == cb.B: // same pod, same edge switch
		return 2
	case ca.A == cb.A: // same pod, different edge
		return 4
	default: // different pod
		return 6
	}
}

func (m *Model) torusDistance(ra, rb int) int {
	ca, cb := m.placement[ra], m.placement[rb]
	dims := m.shape.Dims
	total := wrapDelta(ca.A, cb.A, dims[0]) + wrapDelta(ca.B, cb.B, dims[1])
	if len(dims) >= 3 {
		total += wrapDelta(ca.C, cb.C, dims[2])
	}
	return total
}

func wrapDelta(a, b, dim int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if wrapped := dim - d; wrapped < d {
		return wrapped
	}
	return d
}

func (m *Model) dragonflyDistance(ra, rb int) int {
	ca, cb := m.placement[ra], m.placement[rb]
	switch {
	case ca.A == cb.A && ca.B == cb.B: // same router (siblings on one host bus)
		return 1
	case ca.A == cb.A: // same group, different router
		return 2
	default: // different group, one global hop
		return 3
	}
}
