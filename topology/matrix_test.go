package topology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpatel-hpc/topoflow/topology"
)

func TestDistanceMatrixGetSet(t *testing.T) {
	m := topology.NewDistanceMatrix(3)
	require.NoError(t, m.Set(0, 1, 2))
	require.NoError(t, m.Set(1, 0, 2))
	v, err := m.Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, m.Symmetric())
}

func TestDistanceMatrixOutOfRange(t *testing.T) {
	m := topology.NewDistanceMatrix(2)
	_, err := m.Get(5, 0)
	assert.ErrorIs(t, err, topology.ErrIndexOutOfRange)
}

func TestDistanceMatrixTranspose(t *testing.T) {
	m := topology.NewDistanceMatrix(2)
	require.NoError(t, m.Set(0, 1, 7))
	tr := m.Transpose()
	v, err := tr.Get(1, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestBandwidthMatrixSetMirrors(t *testing.T) {
	m := topology.NewBandwidthMatrix(4)
	require.NoError(t, m.Set(0, 3, 10_000))
	v, err := m.Get(3, 0)
	require.NoError(t, err)
	assert.Equal(t, 10_000.0, v)
	assert.True(t, m.Symmetric())
}

func TestBandwidthMatrixDiagonalDefaultsZero(t *testing.T) {
	m := topology.NewBandwidthMatrix(3)
	v, err := m.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}
