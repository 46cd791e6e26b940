package measure

import (
	"fmt"

	"github.com/mpatel-hpc/topoflow/stats"
	"github.com/mpatel-hpc/topoflow/substrate"
	"github.com/mpatel-hpc/topoflow/topology"
)

const (
	latencyTag   = 900
	bandwidthTag = 901
)

// Harness drives the point-to-point and all-to-all probes described in
// spec.md §4.A over an injected substrate.Substrate. It is not safe for
// concurrent use by multiple goroutines within one process — one harness
// drives one measurement pass, matching spec.md §3's sample-set/timer
// lifecycle.
type Harness struct {
	sub substrate.Substrate
	cfg *harnessConfig
}

// NewHarness constructs a Harness over sub with the given options applied.
func NewHarness(sub substrate.Substrate, opts ...Option) *Harness {
	return &Harness{sub: sub, cfg: newHarnessConfig(opts...)}
}

// MeasurePointToPointLatency runs iters timed ping-pong exchanges between
// ra and rb (after a fixed warmup) and returns the mean one-way latency in
// microseconds. Ranks other than ra/rb return 0 and take no part in the
// message exchange, but still join every barrier (spec.md §4.A: "a
// group-wide barrier precedes each timed iteration").
func (h *Harness) MeasurePointToPointLatency(ra, rb, iters int) (float64, error) {
	if iters <= 0 {
		iters = defaultIterations
	}
	samples, err := h.pingPong(ra, rb, iters, []float64{0}, latencyTag, func(elapsedSeconds float64) float64 {
		return elapsedSeconds * 1e6 / 2
	})
	if err != nil {
		return 0, fmt.Errorf("MeasurePointToPointLatency: %w", err)
	}
	if samples == nil {
		return 0, nil
	}
	h.trimOutliers(samples)
	return samples.Mean(), nil
}

// MeasurePointToPointBandwidth runs iters timed ping-pong exchanges of a
// bytes-sized buffer between ra and rb and returns the mean bandwidth in
// Mbps, per spec.md §4.A's `(bytes*8)/(elapsed*1e6)` formula applied each
// iteration. Ranks other than ra/rb return 0.
func (h *Harness) MeasurePointToPointBandwidth(ra, rb, bytes, iters int) (float64, error) {
	if iters <= 0 {
		iters = defaultIterations
	}
	count := bytes / 8
	if count < 1 {
		count = 1
	}
	buf := make([]float64, count)
	samples, err := h.pingPong(ra, rb, iters, buf, bandwidthTag, func(elapsedSeconds float64) float64 {
		if elapsedSeconds <= 0 {
			return 0
		}
		return (float64(bytes) * 8) / (elapsedSeconds * 1e6)
	})
	if err != nil {
		return 0, fmt.Errorf("MeasurePointToPointBandwidth: %w", err)
	}
	if samples == nil {
		return 0, nil
	}
	h.trimOutliers(samples)
	return samples.Mean(), nil
}

// MeasureAllToAllBandwidth drives MeasurePointToPointBandwidth for every
// unordered pair of ranks and mirrors the result into a symmetric
// topology.BandwidthMatrix with a zero diagonal, per spec.md §4.A. When
// model is non-nil and carries an explicit physical link graph (Flat,
// Dragonfly), a pair with no direct link is skipped rather than measured —
// there is no point probing point-to-point bandwidth over a path the
// model itself says isn't a direct hop — and the matrix keeps that pair's
// zero-value entry. A nil model, or one with no link graph (FatTree,
// Torus2D/3D), measures every pair, exactly as before.
func (h *Harness) MeasureAllToAllBandwidth(model *topology.Model, bytes int) (*topology.BandwidthMatrix, error) {
	n := h.sub.Size()
	mat := topology.NewBandwidthMatrix(n)
	useLinkGraph := model != nil && model.HasLinkGraph()
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if useLinkGraph && !model.HasPhysicalLink(a, b) {
				continue
			}
			mbps, err := h.MeasurePointToPointBandwidth(a, b, bytes, defaultIterations)
			if err != nil {
				return nil, fmt.Errorf("MeasureAllToAllBandwidth: %w", err)
			}
			if err := mat.Set(a, b, mbps); err != nil {
				return nil, fmt.Errorf("MeasureAllToAllBandwidth: %w", err)
			}
		}
	}
	return mat, nil
}

// Calibrate measures a representative point-to-point latency and
// bandwidth (between rank 0 and rank 1) and writes the result into every
// tier model.Kind() populates. A tier whose underlying samples are
// anomalous (spec.md §7 kind 5: all outliers, or zero variance across
// distinct inputs) is flagged low-confidence on the model and logged at
// Warn, but the model is still populated with the best-effort value —
// Calibrate never returns an error for a measurement anomaly, only for a
// substrate failure.
func (h *Harness) Calibrate(model *topology.Model) ([]topology.Tier, error) {
	if h.sub.Size() < 2 {
		return nil, nil
	}

	latSamples, err := h.pingPong(0, 1, defaultIterations, []float64{0}, latencyTag, func(s float64) float64 {
		return s * 1e6 / 2
	})
	if err != nil {
		return nil, fmt.Errorf("Calibrate: %w", err)
	}
	count := h.cfg.calibrationBytes / 8
	if count < 1 {
		count = 1
	}
	bwSamples, err := h.pingPong(0, 1, defaultIterations, make([]float64, count), bandwidthTag, func(s float64) float64 {
		if s <= 0 {
			return 0
		}
		return (float64(h.cfg.calibrationBytes) * 8) / (s * 1e6)
	})
	if err != nil {
		return nil, fmt.Errorf("Calibrate: %w", err)
	}

	// Only ranks 0 and 1 collected samples and update their model below;
	// every other rank returns here and leaves its model unchanged.
	if h.sub.Rank() != 0 && h.sub.Rank() != 1 {
		return nil, nil
	}

	h.trimOutliers(latSamples)
	h.trimOutliers(bwSamples)

	var flagged []topology.Tier
	for _, tier := range model.Tiers() {
		anomalous := sampleSetAnomalous(latSamples) || sampleSetAnomalous(bwSamples)
		model.SetTierCharacteristics(tier, bwSamples.Mean(), latSamples.Mean())
		if anomalous {
			model.FlagTier(tier)
			flagged = append(flagged, tier)
			h.cfg.logger.Warn().
				Str("tier", tier.String()).
				Msg("measurement anomaly: tier marked low-confidence")
		}
	}
	return flagged, nil
}

// pingPong runs the shared ping-pong protocol: a group-wide barrier
// precedes each of warmup+iters rounds; only ra and rb exchange buf
// (ra sends then receives, rb receives then sends); convert records each
// timed round's elapsed wall-clock seconds into the caller's unit. Returns
// nil (not an error) when the local rank is neither ra nor rb.
func (h *Harness) pingPong(ra, rb, iters int, buf []float64, tag int, convert func(elapsedSeconds float64) float64) (*stats.SampleSet, error) {
	self := h.sub.Rank()
	total := h.cfg.warmup + iters
	samples := stats.NewSampleSet()

	for i := 0; i < total; i++ {
		h.sub.Barrier()
		if self != ra && self != rb {
			continue
		}

		start := h.sub.Wtime()
		var err error
		if self == ra {
			if err = h.sub.Send(buf, rb, tag); err == nil {
				err = h.sub.Recv(buf, rb, tag)
			}
		} else {
			if err = h.sub.Recv(buf, ra, tag); err == nil {
				err = h.sub.Send(buf, ra, tag)
			}
		}
		if err != nil {
			return nil, err
		}

		if i >= h.cfg.warmup {
			samples.Add(convert(h.sub.Wtime() - start))
		}
	}

	if self != ra && self != rb {
		return nil, nil
	}
	return samples, nil
}

// trimOutliers removes outliers from samples in place using the
// harness's configured multiplier; a no-op on an empty set.
func (h *Harness) trimOutliers(samples *stats.SampleSet) {
	if samples == nil || samples.Len() == 0 {
		return
	}
	samples.RemoveOutliers(h.cfg.outlierK)
}

// sampleSetAnomalous reports the spec.md §7 kind 5 measurement-anomaly
// condition: every sample was trimmed as an outlier, or the remaining
// samples have zero variance despite more than one distinct input value.
func sampleSetAnomalous(samples *stats.SampleSet) bool {
	if samples == nil || samples.Len() == 0 {
		return true
	}
	if samples.Len() <= 1 {
		return false
	}
	distinct := make(map[float64]struct{}, samples.Len())
	for _, v := range samples.Values() {
		distinct[v] = struct{}{}
	}
	return len(distinct) > 1 && samples.StdDev() == 0
}
