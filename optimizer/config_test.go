package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpatel-hpc/topoflow/optimizer"
	"github.com/mpatel-hpc/topoflow/topology"
)

// TestDefaultConfigScalesForEveryTopologyKind pins DefaultConfig's
// model-parameterized scaling (spec.md §4.D) against every Kind, each
// with its own innermost tier overridden away from the 1µs/10Gbps
// baseline, so a regression back to always reading TierIntraRack (only
// ever populated by Flat) silently falling back to the hardcoded
// defaults would fail here instead of passing unnoticed.
func TestDefaultConfigScalesForEveryTopologyKind(t *testing.T) {
	base := optimizer.DefaultConfig(nil)

	cases := []struct {
		name  string
		build func(t *testing.T) *topology.Model
	}{
		{
			// TierComputeEdge (latency 1) stays the fastest tier: EdgeAgg/
			// AggCore default to 2/5µs, so the 0.5µs override below is still
			// the innermost figure DefaultConfig should pick up.
			name: "FatTree",
			build: func(t *testing.T) *topology.Model {
				m, err := topology.Build(topology.FatTree, topology.Shape{K: 4, N: 16},
					topology.WithTierLatency(topology.TierComputeEdge, 0.5),
					topology.WithTierBandwidth(topology.TierComputeEdge, 20_000))
				require.NoError(t, err)
				return m
			},
		},
		{
			name: "Torus2D",
			build: func(t *testing.T) *topology.Model {
				m, err := topology.Build(topology.Torus2D, topology.Shape{Dims: []int{4, 4}, N: 16},
					topology.WithTierLatency(topology.TierIntraDim, 0.5),
					topology.WithTierBandwidth(topology.TierIntraDim, 20_000))
				require.NoError(t, err)
				return m
			},
		},
		{
			name: "Dragonfly",
			build: func(t *testing.T) *topology.Model {
				m, err := topology.Build(topology.Dragonfly, topology.Shape{
					Groups: 2, RoutersPerGroup: 2, HostsPerRouter: 2, N: 8,
				},
					topology.WithTierLatency(topology.TierIntraRouter, 0.5),
					topology.WithTierBandwidth(topology.TierIntraRouter, 20_000))
				require.NoError(t, err)
				return m
			},
		},
		{
			name: "Flat",
			build: func(t *testing.T) *topology.Model {
				m, err := topology.Build(topology.Flat, topology.Shape{N: 4},
					topology.WithTierLatency(topology.TierIntraRack, 0.5),
					topology.WithTierBandwidth(topology.TierIntraRack, 20_000))
				require.NoError(t, err)
				return m
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			model := tc.build(t)
			cfg := optimizer.DefaultConfig(model)
			assert.NotEqual(t, base.TSmall, cfg.TSmall, "TSmall should scale away from the flat default")
			assert.NotEqual(t, base.TLarge, cfg.TLarge, "TLarge should scale away from the flat default")
			// Latency 0.5x baseline and bandwidth 2x baseline scales by 0.25x.
			assert.Equal(t, base.TSmall/4, cfg.TSmall)
			assert.Equal(t, base.TLarge/4, cfg.TLarge)
		})
	}
}

// TestDefaultConfigNilModelFallsBackToDefaults pins the documented nil-model
// fallback.
func TestDefaultConfigNilModelFallsBackToDefaults(t *testing.T) {
	cfg := optimizer.DefaultConfig(nil)
	assert.Equal(t, 4*1024, cfg.TSmall)
	assert.Equal(t, 256*1024, cfg.TLarge)
}
