package topology

import "fmt"

// DistanceMatrix is a dense N×N matrix of hop-count distances, adapted
// from this repository's general dense-matrix idiom (flat row-major
// backing slice, bounds-checked accessors returning an error rather than
// panicking) and narrowed to the one numeric type this package needs.
type DistanceMatrix struct {
	n    int
	data []int
}

// NewDistanceMatrix returns an n×n DistanceMatrix initialized to zero.
func NewDistanceMatrix(n int) *DistanceMatrix {
	return &DistanceMatrix{n: n, data: make([]int, n*n)}
}

// N returns the matrix's dimension.
func (m *DistanceMatrix) N() int { return m.n }

// Get returns the distance at (i, j), or ErrIndexOutOfRange if either
// index is out of bounds.
func (m *DistanceMatrix) Get(i, j int) (int, error) {
	idx, err := m.indexOf(i, j)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns the distance at (i, j).
func (m *DistanceMatrix) Set(i, j, v int) error {
	idx, err := m.indexOf(i, j)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

func (m *DistanceMatrix) indexOf(i, j int) (int, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, fmt.Errorf("DistanceMatrix index (%d,%d): %w", i, j, ErrIndexOutOfRange)
	}
	return i*m.n + j, nil
}

// Symmetric reports whether the matrix equals its own transpose.
func (m *DistanceMatrix) Symmetric() bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.data[i*m.n+j] != m.data[j*m.n+i] {
				return false
			}
		}
	}
	return true
}

// Transpose returns a new DistanceMatrix equal to m's transpose.
func (m *DistanceMatrix) Transpose() *DistanceMatrix {
	out := NewDistanceMatrix(m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out.data[j*m.n+i] = m.data[i*m.n+j]
		}
	}
	return out
}

// BandwidthMatrix is a dense N×N matrix of Mbps figures, populated by the
// measurement harness's all-to-all sweep. Same dense-row-major shape as
// DistanceMatrix, duplicated rather than made generic over both types — the
// two never interoperate and each has a distinct zero-value semantics
// (distance 0 is meaningful on the diagonal, bandwidth 0 means
// unmeasured).
type BandwidthMatrix struct {
	n    int
	data []float64
}

// NewBandwidthMatrix returns an n×n BandwidthMatrix initialized to zero
// (unmeasured).
func NewBandwidthMatrix(n int) *BandwidthMatrix {
	return &BandwidthMatrix{n: n, data: make([]float64, n*n)}
}

// N returns the matrix's dimension.
func (m *BandwidthMatrix) N() int { return m.n }

// Get returns the bandwidth at (i, j) in Mbps.
func (m *BandwidthMatrix) Get(i, j int) (float64, error) {
	idx, err := m.indexOf(i, j)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns the bandwidth at (i, j) and mirrors it at (j, i), preserving
// the symmetric-matrix invariant the harness promises (spec.md §4.A:
// "mirroring into a symmetric matrix").
func (m *BandwidthMatrix) Set(i, j int, mbps float64) error {
	idx, err := m.indexOf(i, j)
	if err != nil {
		return err
	}
	jdx, err := m.indexOf(j, i)
	if err != nil {
		return err
	}
	m.data[idx] = mbps
	m.data[jdx] = mbps
	return nil
}

func (m *BandwidthMatrix) indexOf(i, j int) (int, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, fmt.Errorf("BandwidthMatrix index (%d,%d): %w", i, j, ErrIndexOutOfRange)
	}
	return i*m.n + j, nil
}

// Symmetric reports whether the matrix equals its own transpose.
func (m *BandwidthMatrix) Symmetric() bool {
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.data[i*m.n+j] != m.data[j*m.n+i] {
				return false
			}
		}
	}
	return true
}
