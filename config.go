package jointset

import (
	"fmt"
	"math"
	"runtime"
)

// SeedingMode selects how initial medoids are chosen.
type SeedingMode string

const (
	// ModeAuto picks medoids internally (symmetric k-means++).
	ModeAuto SeedingMode = "auto"
	// ModeManual snaps user supplied plunge/trend seeds to data vectors.
	ModeManual SeedingMode = "manual"
)

// Algorithm selects the medoid refinement strategy.
type Algorithm string

const (
	// AlgorithmAlternate alternates nearest-medoid assignment and
	// per-cluster medoid updates until assignments stop changing.
	AlgorithmAlternate Algorithm = "alternate"
	// AlgorithmPAM runs the alternate phase and then a PAM swap phase over
	// a full pairwise distance matrix (O(n²) memory).
	AlgorithmPAM Algorithm = "pam"
)

// Config controls a clustering run.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Mode chooses automatic or manual seeding. Default: "auto".
	Mode SeedingMode

	// Classes is the number of joint sets wanted in automatic mode. The
	// dual-hemisphere set is clustered into 2*Classes groups and half are
	// pruned afterwards. Values < 1 are clamped to 1. Default: 1.
	Classes int

	// Seeds are the manual seed directions. An empty list falls back to a
	// single horizontal seed at trend 0.
	Seeds []Seed

	// Algorithm selects the refinement strategy. Default: "alternate".
	Algorithm Algorithm

	// Metric measures distance between unit vectors. Default: ChordMetric.
	Metric DistanceMetric

	// MaxIterations caps the alternate phase (and the PAM swap phase).
	// Must be >= 1. Default: 100.
	MaxIterations int

	// RandomSeed seeds automatic medoid selection. 0 draws a seed from the
	// clock, so results are reproducible only within one run.
	RandomSeed uint64

	// Significance is the level at which goodness-of-fit tests reject.
	// Must be in (0, 1). Default: 0.05.
	Significance float64

	// Workers controls the number of goroutines for assignment, medoid
	// updates and density grids. 0 means use runtime.NumCPU().
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeAuto,
		Classes:       1,
		Algorithm:     AlgorithmAlternate,
		Metric:        ChordMetric{},
		MaxIterations: 100,
		Significance:  0.05,
	}
}

// MaxClasses bounds the class count RoundClasses returns. Automatic
// seeding further limits k to the number of records.
const MaxClasses = 1 << 20

// RoundClasses converts a user entered class count to the integer k used by
// automatic seeding: rounded to nearest and clamped to [1, MaxClasses].
func RoundClasses(k float64) int {
	if math.IsNaN(k) || k < 1 {
		return 1
	}
	return int(math.Min(math.Round(k), MaxClasses))
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if cfg.Classes < 1 {
		cfg.Classes = 1
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAlternate
	}
	if cfg.Metric == nil {
		cfg.Metric = ChordMetric{}
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 100
	}
	if cfg.Significance == 0 {
		cfg.Significance = 0.05
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	switch cfg.Mode {
	case ModeAuto, ModeManual:
	default:
		return fmt.Errorf("jointset: Mode must be \"auto\" or \"manual\", got %q", cfg.Mode)
	}
	switch cfg.Algorithm {
	case AlgorithmAlternate, AlgorithmPAM:
	default:
		return fmt.Errorf("jointset: invalid Algorithm %q", cfg.Algorithm)
	}
	if cfg.MaxIterations < 1 {
		return fmt.Errorf("jointset: MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if math.IsNaN(cfg.Significance) || cfg.Significance <= 0 || cfg.Significance >= 1 {
		return &ValidationError{Row: -1, Field: "significance", Value: cfg.Significance, Err: fmt.Errorf("must be in (0, 1)")}
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("jointset: Workers must be >= 0, got %d", cfg.Workers)
	}
	for i, s := range cfg.Seeds {
		if math.IsNaN(s.Plunge) || s.Plunge < -90 || s.Plunge > 90 {
			return &ValidationError{Row: i, Field: "seed plunge", Value: s.Plunge, Err: fmt.Errorf("must be in [-90, 90]")}
		}
		if math.IsNaN(s.Trend) || s.Trend < 0 || s.Trend > 360 {
			return &ValidationError{Row: i, Field: "seed trend", Value: s.Trend, Err: fmt.Errorf("must be in [0, 360]")}
		}
	}
	return nil
}
