package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultOutlierK is the Tukey-fence multiplier used when a caller does not
// supply one explicitly (spec.md §3: "threshold multiplier k (default
// 1.5)").
const DefaultOutlierK = 1.5

// minNormalitySamples is the smallest sample count the skew/kurtosis
// normality check will evaluate (spec.md §4.A: "over ≥20 samples").
const minNormalitySamples = 20

// coarseQuartileMinN is the sample count at or above which the harness uses
// the spec's literal coarse quartile indices sorted[n/4]/sorted[3n/4]
// rather than linear interpolation. Below this, those indices land on the
// same or adjacent elements and produce a degenerate IQR — the redesign
// flag in spec.md §9 ("adopt linear interpolation ... for n < 8").
const coarseQuartileMinN = 8

// SampleSet is an unordered collection of float64 samples with the
// operations the Measurement Harness needs: add, clear, descriptive
// statistics, and IQR-based outlier detection/removal.
//
// SampleSet is not safe for concurrent use; each measurement pass owns one
// (spec.md §3: "Sample sets and timers live for the duration of a
// measurement pass").
type SampleSet struct {
	data []float64
}

// NewSampleSet returns an empty SampleSet.
func NewSampleSet() *SampleSet {
	return &SampleSet{}
}

// Add appends v to the set.
func (s *SampleSet) Add(v float64) {
	s.data = append(s.data, v)
}

// Clear empties the set without releasing backing capacity.
func (s *SampleSet) Clear() {
	s.data = s.data[:0]
}

// Len returns the number of samples currently in the set.
func (s *SampleSet) Len() int {
	return len(s.data)
}

// Values returns a defensive copy of the raw samples.
func (s *SampleSet) Values() []float64 {
	out := make([]float64, len(s.data))
	copy(out, s.data)
	return out
}

// sorted returns a sorted copy of the samples, never the internal slice.
func (s *SampleSet) sorted() []float64 {
	out := s.Values()
	sort.Float64s(out)
	return out
}

// Mean returns the arithmetic mean, or 0 for an empty set.
func (s *SampleSet) Mean() float64 {
	if len(s.data) == 0 {
		return 0
	}
	return stat.Mean(s.data, nil)
}

// Median returns the sorted-sample median: the middle element for odd n,
// or the mean of the two middle elements for even n.
func (s *SampleSet) Median() float64 {
	sorted := s.sorted()
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the Bessel-corrected (n-1) sample standard deviation, or 0
// for fewer than two samples.
func (s *SampleSet) StdDev() float64 {
	if len(s.data) < 2 {
		return 0
	}
	return stat.StdDev(s.data, nil)
}

// Variance returns the Bessel-corrected sample variance, or 0 for fewer
// than two samples.
func (s *SampleSet) Variance() float64 {
	if len(s.data) < 2 {
		return 0
	}
	return stat.Variance(s.data, nil)
}

// ConfidenceHalfWidth95 returns the 95% confidence interval half-width
// 1.96·σ/√n, or 0 for an empty set.
func (s *SampleSet) ConfidenceHalfWidth95() float64 {
	n := len(s.data)
	if n == 0 {
		return 0
	}
	return 1.96 * s.StdDev() / math.Sqrt(float64(n))
}

// Min returns the smallest sample, or 0 for an empty set.
func (s *SampleSet) Min() float64 {
	if len(s.data) == 0 {
		return 0
	}
	return floats.Min(s.data)
}

// Max returns the largest sample, or 0 for an empty set.
func (s *SampleSet) Max() float64 {
	if len(s.data) == 0 {
		return 0
	}
	return floats.Max(s.data)
}

// IsApproxNormal applies the crude skew/kurtosis normality check from
// spec.md §4.A: |skew| < 1 ∧ |excess kurtosis| < 2, evaluated only with at
// least minNormalitySamples observations (otherwise the check is
// considered inconclusive and reports false).
func (s *SampleSet) IsApproxNormal() bool {
	if len(s.data) < minNormalitySamples {
		return false
	}
	skew := stat.Skew(s.data, nil)
	exKurt := stat.ExKurtosis(s.data, nil)
	return math.Abs(skew) < 1 && math.Abs(exKurt) < 2
}

// quartiles returns (q1, q3) following spec.md §4.A's literal coarse
// indexing (sorted[n/4], sorted[3n/4]) for n ≥ coarseQuartileMinN, and
// linear interpolation between the two nearest ranks below that threshold
// (the redesign fix for degenerate small-n IQR, spec.md §9).
func (s *SampleSet) quartiles() (q1, q3 float64) {
	sorted := s.sorted()
	n := len(sorted)
	if n == 0 {
		return 0, 0
	}
	if n >= coarseQuartileMinN {
		return sorted[n/4], sorted[3*n/4]
	}
	return stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		stat.Quantile(0.75, stat.LinInterp, sorted, nil)
}

// OutlierBounds returns the Tukey fences [q1-k·iqr, q3+k·iqr] for the
// current sample set and multiplier k.
func (s *SampleSet) OutlierBounds(k float64) (lo, hi float64) {
	q1, q3 := s.quartiles()
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}

// IsOutlier reports whether v falls outside the current set's Tukey fences
// for multiplier k.
func (s *SampleSet) IsOutlier(v, k float64) bool {
	lo, hi := s.OutlierBounds(k)
	return v < lo || v > hi
}

// RemoveOutliers drops every sample outside the Tukey fences for
// multiplier k and reports whether anything was removed. On a true result
// the set's contents are replaced with the trimmed samples; on false the
// set is left untouched (spec.md §4.A: "remove_outliers returns true and
// replaces the sample set iff at least one outlier was removed").
func (s *SampleSet) RemoveOutliers(k float64) bool {
	lo, hi := s.OutlierBounds(k)
	kept := make([]float64, 0, len(s.data))
	removed := false
	for _, v := range s.data {
		if v < lo || v > hi {
			removed = true
			continue
		}
		kept = append(kept, v)
	}
	if removed {
		s.data = kept
	}
	return removed
}
