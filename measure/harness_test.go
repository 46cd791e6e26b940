package measure_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpatel-hpc/topoflow/measure"
	"github.com/mpatel-hpc/topoflow/substrate"
	"github.com/mpatel-hpc/topoflow/topology"
)

func runOnAll(eps []substrate.Substrate, fn func(h *measure.Harness, rank int)) {
	var wg sync.WaitGroup
	wg.Add(len(eps))
	for r, ep := range eps {
		go func(r int, ep substrate.Substrate) {
			defer wg.Done()
			fn(measure.NewHarness(ep, measure.WithWarmup(1)), r)
		}(r, ep)
	}
	wg.Wait()
}

func TestMeasurePointToPointLatencyNonParticipantReturnsZero(t *testing.T) {
	eps := substrate.NewMockGroup(4)
	results := make([]float64, 4)
	var mu sync.Mutex
	runOnAll(eps, func(h *measure.Harness, rank int) {
		v, err := h.MeasurePointToPointLatency(0, 1, 3)
		require.NoError(t, err)
		mu.Lock()
		results[rank] = v
		mu.Unlock()
	})
	assert.Equal(t, 0.0, results[2])
	assert.Equal(t, 0.0, results[3])
	assert.GreaterOrEqual(t, results[0], 0.0)
	assert.GreaterOrEqual(t, results[1], 0.0)
}

func TestMeasurePointToPointBandwidthParticipantsPositive(t *testing.T) {
	eps := substrate.NewMockGroup(2)
	results := make([]float64, 2)
	runOnAll(eps, func(h *measure.Harness, rank int) {
		v, err := h.MeasurePointToPointBandwidth(0, 1, 4096, 3)
		require.NoError(t, err)
		results[rank] = v
	})
	assert.Greater(t, results[0], 0.0)
	assert.Greater(t, results[1], 0.0)
}

func TestMeasureAllToAllBandwidthSymmetricZeroDiagonal(t *testing.T) {
	eps := substrate.NewMockGroup(3)
	var mats [3]*topology.BandwidthMatrix
	var wg sync.WaitGroup
	wg.Add(3)
	for r, ep := range eps {
		go func(r int, ep substrate.Substrate) {
			defer wg.Done()
			h := measure.NewHarness(ep, measure.WithWarmup(1))
			m, err := h.MeasureAllToAllBandwidth(nil, 1024)
			require.NoError(t, err)
			mats[r] = m
		}(r, ep)
	}
	wg.Wait()

	m := mats[0]
	assert.True(t, m.Symmetric())
	diag, err := m.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, diag)
}

// TestMeasureAllToAllBandwidthSkipsUnlinkedPairsUnderLinkGraphModel pins
// the Dragonfly link-graph skip: two hosts on different routers have no
// direct physical link, so MeasureAllToAllBandwidth must leave that pair
// at the matrix's zero default rather than measuring it, while a pair on
// the same router (directly linked) is measured and comes back positive.
func TestMeasureAllToAllBandwidthSkipsUnlinkedPairsUnderLinkGraphModel(t *testing.T) {
	model, err := topology.Build(topology.Dragonfly, topology.Shape{
		Groups: 1, RoutersPerGroup: 2, HostsPerRouter: 2, N: 4,
	})
	require.NoError(t, err)
	require.True(t, model.HasPhysicalLink(0, 1))
	require.False(t, model.HasPhysicalLink(0, 2))

	eps := substrate.NewMockGroup(4)
	var mats [4]*topology.BandwidthMatrix
	var wg sync.WaitGroup
	wg.Add(4)
	for r, ep := range eps {
		go func(r int, ep substrate.Substrate) {
			defer wg.Done()
			h := measure.NewHarness(ep, measure.WithWarmup(1))
			m, err := h.MeasureAllToAllBandwidth(model, 1024)
			require.NoError(t, err)
			mats[r] = m
		}(r, ep)
	}
	wg.Wait()

	linked, err := mats[0].Get(0, 1)
	require.NoError(t, err)
	assert.Greater(t, linked, 0.0)

	unlinked, err := mats[0].Get(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, unlinked)
}

func TestCalibrateSingleRankIsNoop(t *testing.T) {
	eps := substrate.NewMockGroup(1)
	h := measure.NewHarness(eps[0])
	model, err := topology.Build(topology.Flat, topology.Shape{N: 1})
	require.NoError(t, err)
	flagged, err := h.Calibrate(model)
	require.NoError(t, err)
	assert.Nil(t, flagged)
}

func TestCalibratePopulatesModelTiers(t *testing.T) {
	// Each rank owns an independent Model, mirroring real deployment
	// (one process per rank, no shared memory); the mock substrate only
	// shares message channels, never a Model.
	eps := substrate.NewMockGroup(2)
	var models [2]*topology.Model

	var wg sync.WaitGroup
	wg.Add(2)
	for r, ep := range eps {
		go func(r int, ep substrate.Substrate) {
			defer wg.Done()
			model, err := topology.Build(topology.Flat, topology.Shape{N: 2})
			require.NoError(t, err)
			h := measure.NewHarness(ep, measure.WithWarmup(1), measure.WithCalibrationBytes(1024))
			_, err = h.Calibrate(model)
			assert.NoError(t, err)
			models[r] = model
		}(r, ep)
	}
	wg.Wait()

	assert.Greater(t, models[0].TierBandwidth(topology.TierIntraRack), 0.0)
	assert.Greater(t, models[1].TierBandwidth(topology.TierIntraRack), 0.0)
}
