package measure

import "github.com/rs/zerolog"

// defaultIterations is the number of timed iterations a probe averages
// over when the caller passes 0 to MeasurePointToPointLatency/Bandwidth.
const defaultIterations = 30

// defaultWarmup is the number of untimed warmup iterations preceding the
// timed ones.
const defaultWarmup = 5

// defaultCalibrationBytes is the message size Calibrate uses for its
// representative bandwidth probe.
const defaultCalibrationBytes = 64 * 1024

// Option customizes a Harness before first use, following this
// repository's resolve-once functional-options idiom.
type Option func(*harnessConfig)

type harnessConfig struct {
	warmup            int
	outlierK          float64
	calibrationBytes  int
	logger            zerolog.Logger
}

func newHarnessConfig(opts ...Option) *harnessConfig {
	cfg := &harnessConfig{
		warmup:           defaultWarmup,
		outlierK:         1.5,
		calibrationBytes: defaultCalibrationBytes,
		logger:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithWarmup sets the number of untimed warmup iterations before each
// timed pass.
func WithWarmup(n int) Option {
	return func(c *harnessConfig) { c.warmup = n }
}

// WithOutlierK sets the Tukey-fence multiplier used to trim measurement
// samples before averaging.
func WithOutlierK(k float64) Option {
	return func(c *harnessConfig) { c.outlierK = k }
}

// WithCalibrationBytes sets the message size Calibrate uses for its
// representative bandwidth probe.
func WithCalibrationBytes(n int) Option {
	return func(c *harnessConfig) { c.calibrationBytes = n }
}

// WithLogger attaches a structured logger for measurement-anomaly
// warnings. A zero value Harness logs nothing (zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(c *harnessConfig) { c.logger = l }
}
