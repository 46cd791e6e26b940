package optimizer

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mpatel-hpc/topoflow/topology"
)

const (
	defaultTSmall    = 4 * 1024   // bytes
	defaultTLarge    = 256 * 1024 // bytes
	defaultCacheSize = 256
	datatypeSize     = 8 // float64, the library's one committed datatype
)

// baselineAlphaMicros/baselineBetaInverseMbps are the reference α/β the
// 4 KiB/256 KiB defaults were chosen against (roughly a 1 µs, 10 Gbps
// compute-edge hop); DefaultConfig scales the thresholds by how the
// supplied model's own fastest (innermost) tier compares to this
// baseline, per spec.md §4.D's "thresholds are model-parameterized."
const (
	baselineAlphaMicros   = 1.0
	baselineBandwidthMbps = 10000.0
)

// Config carries the optimizer's tunables: algorithm-selection
// thresholds (bytes) and decision-cache capacity.
type Config struct {
	TSmall    int
	TLarge    int
	CacheSize int
}

// Option customizes a Config before it's resolved; later options
// override earlier ones, the same functional-options resolve-once shape
// used throughout this module (measure.Option, topology.BuildOption).
type Option func(*Config)

// WithTSmall overrides the small-message threshold, in bytes.
func WithTSmall(bytes int) Option {
	return func(c *Config) {
		if bytes > 0 {
			c.TSmall = bytes
		}
	}
}

// WithTLarge overrides the large-message threshold, in bytes.
func WithTLarge(bytes int) Option {
	return func(c *Config) {
		if bytes > 0 {
			c.TLarge = bytes
		}
	}
}

// WithCacheSize overrides the decision cache's maximum entry count.
func WithCacheSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.CacheSize = n
		}
	}
}

// DefaultConfig derives TSmall/TLarge from model's fastest populated tier's
// latency/bandwidth relative to a fixed baseline, then applies opts. A nil
// model, or one whose tiers carry no usable figures, falls back to the flat
// spec.md §4.D defaults (4 KiB/256 KiB).
func DefaultConfig(model *topology.Model, opts ...Option) Config {
	cfg := Config{TSmall: defaultTSmall, TLarge: defaultTLarge, CacheSize: defaultCacheSize}

	if model != nil {
		alpha, bandwidth := innermostTierCharacteristics(model)
		if alpha > 0 && bandwidth > 0 {
			scale := (alpha / baselineAlphaMicros) * (baselineBandwidthMbps / bandwidth)
			if scale > 0 {
				cfg.TSmall = scaleThreshold(defaultTSmall, scale)
				cfg.TLarge = scaleThreshold(defaultTLarge, scale)
			}
		}
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// innermostTierCharacteristics returns the latency/bandwidth figures for
// model's fastest (lowest-latency) populated tier — the analog of
// TierIntraRack for whichever Kind model actually is, since only Flat
// populates TierIntraRack itself (topology/build.go's defaultLatency):
// FatTree's innermost tier is TierComputeEdge, Torus2D/3D's is
// TierIntraDim, Dragonfly's is TierIntraRouter. Iterating model.Tiers()
// rather than naming one tier keeps this correct for every Kind without
// hardcoding Kind-specific tier names here.
func innermostTierCharacteristics(model *topology.Model) (alphaMicros, bandwidthMbps float64) {
	best := math.Inf(1)
	for _, t := range model.Tiers() {
		lat := model.TierLatency(t)
		if lat <= 0 || lat >= best {
			continue
		}
		best = lat
		alphaMicros = lat
		bandwidthMbps = model.TierBandwidth(t)
	}
	return alphaMicros, bandwidthMbps
}

func scaleThreshold(base int, scale float64) int {
	scaled := int(float64(base) * scale)
	if scaled < 1 {
		return 1
	}
	return scaled
}

// yamlConfig mirrors Config's fields for LoadConfig's file format.
type yamlConfig struct {
	TSmall    int `yaml:"t_small"`
	TLarge    int `yaml:"t_large"`
	CacheSize int `yaml:"cache_size"`
}

// LoadConfig reads a Config from a YAML file (spec.md §1.1's override
// path for the model-derived defaults): keys t_small, t_large,
// cache_size, all optional — missing keys keep DefaultConfig's values.
func LoadConfig(path string, model *topology.Model) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("optimizer: read config %q: %w", path, err)
	}
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Config{}, fmt.Errorf("optimizer: parse config %q: %w", path, err)
	}

	cfg := DefaultConfig(model)
	if y.TSmall > 0 {
		cfg.TSmall = y.TSmall
	}
	if y.TLarge > 0 {
		cfg.TLarge = y.TLarge
	}
	if y.CacheSize > 0 {
		cfg.CacheSize = y.CacheSize
	}
	return cfg, nil
}
