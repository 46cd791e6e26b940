package substrate_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpatel-hpc/topoflow/substrate"
)

func TestMockGroupSendRecv(t *testing.T) {
	eps := substrate.NewMockGroup(2)
	var wg sync.WaitGroup
	wg.Add(2)

	var got []float64
	go func() {
		defer wg.Done()
		require.NoError(t, eps[0].Send([]float64{1, 2, 3}, 1, 7))
	}()
	go func() {
		defer wg.Done()
		got = make([]float64, 3)
		require.NoError(t, eps[1].Recv(got, 0, 7))
	}()
	wg.Wait()

	assert.Equal(t, []float64{1, 2, 3}, got)
}

func TestMockGroupLengthMismatch(t *testing.T) {
	eps := substrate.NewMockGroup(2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = eps[0].Send([]float64{1, 2, 3}, 1, 0)
	}()
	buf := make([]float64, 2)
	err := eps[1].Recv(buf, 0, 0)
	wg.Wait()
	assert.ErrorIs(t, err, substrate.ErrLengthMismatch)
}

func TestMockGroupBarrierReleasesAllRanks(t *testing.T) {
	const n = 6
	eps := substrate.NewMockGroup(n)
	var wg sync.WaitGroup
	wg.Add(n)
	reached := make([]bool, n)
	for r := 0; r < n; r++ {
		go func(r int) {
			defer wg.Done()
			eps[r].Barrier()
			reached[r] = true
		}(r)
	}
	wg.Wait()
	for r := 0; r < n; r++ {
		assert.True(t, reached[r])
	}
}

func TestMockGroupSingleRankBarrierIsNoop(t *testing.T) {
	eps := substrate.NewMockGroup(1)
	eps[0].Barrier() // must not block
}

func TestMockGroupReduceLocal(t *testing.T) {
	eps := substrate.NewMockGroup(1)
	dst := []float64{1, 2, 3}
	src := []float64{10, 1, 4}
	eps[0].ReduceLocal(substrate.Max, dst, src)
	assert.Equal(t, []float64{10, 2, 4}, dst)
}

func TestOpCommutative(t *testing.T) {
	assert.True(t, substrate.Sum.Commutative())
	assert.True(t, substrate.Max.Commutative())
	assert.True(t, substrate.Min.Commutative())
	assert.True(t, substrate.Prod.Commutative())
	assert.False(t, substrate.Op(99).Commutative())
}

func TestOpApply(t *testing.T) {
	cases := []struct {
		op       substrate.Op
		dst, src []float64
		want     []float64
	}{
		{substrate.Sum, []float64{1, 2}, []float64{3, 4}, []float64{4, 6}},
		{substrate.Max, []float64{1, 5}, []float64{3, 4}, []float64{3, 5}},
		{substrate.Min, []float64{1, 5}, []float64{3, 4}, []float64{1, 4}},
		{substrate.Prod, []float64{2, 3}, []float64{3, 4}, []float64{6, 12}},
	}
	for _, c := range cases {
		dst := append([]float64(nil), c.dst...)
		c.op.Apply(dst, c.src)
		assert.Equal(t, c.want, dst)
	}
}
