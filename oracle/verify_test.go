package oracle_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpatel-hpc/topoflow/collective"
	"github.com/mpatel-hpc/topoflow/oracle"
	"github.com/mpatel-hpc/topoflow/substrate"
)

func runAll(eps []substrate.Substrate, fn func(ep substrate.Substrate) error) []error {
	errs := make([]error, len(eps))
	var wg sync.WaitGroup
	wg.Add(len(eps))
	for i, ep := range eps {
		go func(i int, ep substrate.Substrate) {
			defer wg.Done()
			errs[i] = fn(ep)
		}(i, ep)
	}
	wg.Wait()
	return errs
}

func TestCheckBroadcastAcceptsCorrectResult(t *testing.T) {
	const n = 8
	eps := substrate.NewMockGroup(n)
	original := []float64{1, 2, 3, 4}
	optimized := make([][]float64, n)
	for r := range optimized {
		if r == 0 {
			optimized[r] = append([]float64(nil), original...)
		} else {
			optimized[r] = make([]float64, len(original))
		}
	}
	errs := runAll(eps, func(ep substrate.Substrate) error {
		return collective.ScatterAllgatherBroadcast(context.Background(), ep, optimized[ep.Rank()], 0)
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	errs = runAll(eps, func(ep substrate.Substrate) error {
		return oracle.CheckBroadcast(context.Background(), ep, optimized[ep.Rank()], 0, original)
	})
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestCheckBroadcastRejectsCorruptedResult(t *testing.T) {
	const n = 4
	eps := substrate.NewMockGroup(n)
	original := []float64{1, 2, 3}
	optimized := make([][]float64, n)
	for r := range optimized {
		optimized[r] = append([]float64(nil), original...)
	}
	optimized[2][2] = 999 // corrupt rank 2's result only

	errs := runAll(eps, func(ep substrate.Substrate) error {
		return oracle.CheckBroadcast(context.Background(), ep, optimized[ep.Rank()], 0, original)
	})
	for r, err := range errs {
		if r == 2 {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestCheckAllreduceAcceptsCorrectResult(t *testing.T) {
	const n = 4
	eps := substrate.NewMockGroup(n)
	local := [][]float64{{1, 2}, {2, 3}, {3, 4}, {4, 5}}
	optimized := make([][]float64, n)
	for r := range optimized {
		optimized[r] = append([]float64(nil), local[r]...)
	}
	errs := runAll(eps, func(ep substrate.Substrate) error {
		return collective.RecursiveHalvingDoublingAllreduce(context.Background(), ep, optimized[ep.Rank()], collective.Sum)
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	errs = runAll(eps, func(ep substrate.Substrate) error {
		return oracle.CheckAllreduce(context.Background(), ep, optimized[ep.Rank()], collective.Sum, local[ep.Rank()])
	})
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestCheckAllreduceRejectsWrongResult(t *testing.T) {
	const n = 4
	eps := substrate.NewMockGroup(n)
	local := [][]float64{{1}, {1}, {1}, {1}}
	wrong := [][]float64{{99}, {99}, {99}, {99}}
	errs := runAll(eps, func(ep substrate.Substrate) error {
		return oracle.CheckAllreduce(context.Background(), ep, wrong[ep.Rank()], collective.Sum, local[ep.Rank()])
	})
	for _, err := range errs {
		assert.Error(t, err)
	}
}

func TestCheckAllgatherAcceptsCorrectResult(t *testing.T) {
	const n = 4
	const chunk = 2
	eps := substrate.NewMockGroup(n)
	local := make([][]float64, n)
	optimized := make([][]float64, n)
	for r := 0; r < n; r++ {
		local[r] = []float64{float64(r*chunk), float64(r*chunk + 1)}
		optimized[r] = make([]float64, n*chunk)
		copy(optimized[r][r*chunk:r*chunk+chunk], local[r])
	}
	errs := runAll(eps, func(ep substrate.Substrate) error {
		return collective.Allgather(context.Background(), ep, nil, optimized[ep.Rank()])
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	errs = runAll(eps, func(ep substrate.Substrate) error {
		return oracle.CheckAllgather(context.Background(), ep, optimized[ep.Rank()], local[ep.Rank()])
	})
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestCheckReduceAcceptsCorrectResult(t *testing.T) {
	const n = 4
	eps := substrate.NewMockGroup(n)
	local := [][]float64{{1}, {2}, {3}, {4}}
	optimized := make([][]float64, n)
	for r := range optimized {
		optimized[r] = append([]float64(nil), local[r]...)
	}
	errs := runAll(eps, func(ep substrate.Substrate) error {
		return collective.BinomialReduce(context.Background(), ep, optimized[ep.Rank()], 0, collective.Max)
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	errs = runAll(eps, func(ep substrate.Substrate) error {
		return oracle.CheckReduce(context.Background(), ep, optimized[ep.Rank()], 0, collective.Max, local[ep.Rank()])
	})
	for _, err := range errs {
		assert.NoError(t, err)
	}
}
