// Package stats implements the Sample Set and Timer value objects the
// measurement harness builds on: an unordered collection of doubles with
// descriptive statistics and interquartile-range outlier detection, and a
// named-section stopwatch.
//
// Descriptive statistics (mean, stddev, variance, skewness, excess
// kurtosis, quantiles) are computed with gonum.org/v1/gonum/stat rather
// than hand-rolled, the same dependency the example pack already reaches
// for when doing numeric analysis over a graph (vanderheijden86/beadwork's
// pkg/analysis); only the Tukey-fence outlier policy and the spec's literal
// coarse-quartile indexing are specific to this package.
package stats
