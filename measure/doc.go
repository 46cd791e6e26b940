// Package measure implements the Measurement Harness: ping-pong latency
// and bandwidth probes over a substrate.Substrate, summarized with
// stats.SampleSet's outlier-trimmed statistics, and a Calibrate entry
// point that writes the result into a topology.Model's tiers.
//
// The harness never raises for a measurement anomaly (all samples
// outlier, or zero variance on distinct inputs); it reports 0 or an
// empty matrix to callers outside the measured pair, and flags a tier
// low-confidence on the model rather than failing the call.
package measure
