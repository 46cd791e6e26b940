// Package topology implements the Network Characteristics Model: the
// representation of interconnect topology, per-tier bandwidth/latency, and
// process placement that feeds collective-algorithm selection.
//
// A Model is built once per process group via Build and is read-only
// thereafter; the only mutation path is measure.Harness.Calibrate writing
// measured bandwidth/latency into an existing Model's tiers. Distance and
// placement are computed per Kind through a closed switch, never through
// virtual dispatch, so the hot path (Model.Distance, consulted on every
// algorithm's chain/ring construction) stays branchless after the tag
// check.
package topology
