package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/TrevorS/jointset"
)

// RunConfig is the optional JSON run file. Every field is a pointer so a
// partial file only overrides what it names; flags set on the command line
// override the file in turn.
type RunConfig struct {
	Format        *int     `json:"format,omitempty"`
	Classes       *float64 `json:"classes,omitempty"`
	Mode          *string  `json:"mode,omitempty"`
	Seeds         *string  `json:"seeds,omitempty"` // "plunge/trend,plunge/trend"
	Algorithm     *string  `json:"algorithm,omitempty"`
	Metric        *string  `json:"metric,omitempty"` // "chord" or "angular"
	MaxIterations *int     `json:"max_iterations,omitempty"`
	RandomSeed    *uint64  `json:"random_seed,omitempty"`
	Significance  *float64 `json:"significance,omitempty"`
	Workers       *int     `json:"workers,omitempty"`
}

// LoadRunConfig loads a RunConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadRunConfig(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &RunConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without the input data.
func (c *RunConfig) Validate() error {
	if c.Format != nil && !jointset.Format(*c.Format).Valid() {
		return fmt.Errorf("format must be 1-4, got %d", *c.Format)
	}
	if c.Mode != nil {
		switch jointset.SeedingMode(*c.Mode) {
		case jointset.ModeAuto, jointset.ModeManual:
		default:
			return fmt.Errorf("mode must be \"auto\" or \"manual\", got %q", *c.Mode)
		}
	}
	if c.Algorithm != nil {
		switch jointset.Algorithm(*c.Algorithm) {
		case jointset.AlgorithmAlternate, jointset.AlgorithmPAM:
		default:
			return fmt.Errorf("algorithm must be \"alternate\" or \"pam\", got %q", *c.Algorithm)
		}
	}
	if c.Metric != nil {
		if _, err := parseMetric(*c.Metric); err != nil {
			return err
		}
	}
	if c.Seeds != nil {
		if _, err := parseSeeds(*c.Seeds); err != nil {
			return err
		}
	}
	if c.MaxIterations != nil && *c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", *c.MaxIterations)
	}
	if c.Significance != nil && (math.IsNaN(*c.Significance) || *c.Significance <= 0 || *c.Significance >= 1) {
		return fmt.Errorf("significance must be in (0, 1), got %f", *c.Significance)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// Apply copies every set field onto cfg.
func (c *RunConfig) Apply(cfg *jointset.Config) error {
	if c.Classes != nil {
		cfg.Classes = jointset.RoundClasses(*c.Classes)
	}
	if c.Mode != nil {
		cfg.Mode = jointset.SeedingMode(*c.Mode)
	}
	if c.Seeds != nil {
		seeds, err := parseSeeds(*c.Seeds)
		if err != nil {
			return err
		}
		cfg.Seeds = seeds
	}
	if c.Algorithm != nil {
		cfg.Algorithm = jointset.Algorithm(*c.Algorithm)
	}
	if c.Metric != nil {
		m, err := parseMetric(*c.Metric)
		if err != nil {
			return err
		}
		cfg.Metric = m
	}
	if c.MaxIterations != nil {
		cfg.MaxIterations = *c.MaxIterations
	}
	if c.RandomSeed != nil {
		cfg.RandomSeed = *c.RandomSeed
	}
	if c.Significance != nil {
		cfg.Significance = *c.Significance
	}
	if c.Workers != nil {
		cfg.Workers = *c.Workers
	}
	return nil
}

// GetFormat returns the format code or the default (dip direction/dip).
func (c *RunConfig) GetFormat() jointset.Format {
	if c.Format == nil {
		return jointset.FormatDipDirectionDip
	}
	return jointset.Format(*c.Format)
}

func parseMetric(name string) (jointset.DistanceMetric, error) {
	switch name {
	case "", "chord":
		return jointset.ChordMetric{}, nil
	case "angular":
		return jointset.AngularMetric{}, nil
	}
	return nil, fmt.Errorf("metric must be \"chord\" or \"angular\", got %q", name)
}
