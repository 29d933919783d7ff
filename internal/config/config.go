// Package config handles configuration loading and management for the
// lshindex CLI: index parameters, ingestion concurrency, and output
// format, loaded from YAML with sensible defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Algorithm names the signing algorithm of a run. cmd/lshbench builds a
// MinHash signer and index whatever the value, and uses Algorithm only as
// the algorithm label of the report's findings.
type Algorithm string

const (
	AlgorithmMinHash Algorithm = "minhash"
	AlgorithmSimHash Algorithm = "simhash"
	AlgorithmFuzzy   Algorithm = "fuzzyhash"
)

// Config is the top-level configuration for a build or query run.
type Config struct {
	Index  IndexConfig  `yaml:"index"`
	Ingest IngestConfig `yaml:"ingest"`
	Output OutputConfig `yaml:"output"`
}

// IndexConfig controls the index's banding parameters. Bands*Rows is the
// signer's total hash count. Both must be positive (Validate rejects zero);
// no pairing is chosen automatically from the configured Threshold.
type IndexConfig struct {
	Algorithm Algorithm `yaml:"algorithm"`
	Bands     int       `yaml:"bands"`
	Rows      int       `yaml:"rows"`
	Width     int       `yaml:"width"` // signature width in bits: 32, 64, or 128
	Seed      int64     `yaml:"seed"`
	Threshold float64   `yaml:"threshold"`
	Container string    `yaml:"container"` // "small_vector" (default), "hashed_set", "dense_sequence"
}

// IngestConfig controls the bulk ingestion pipeline.
type IngestConfig struct {
	Workers      int     `yaml:"workers"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"` // 0 disables throttling
	CacheResults bool    `yaml:"cache_results"`
}

// OutputConfig controls report generation.
type OutputConfig struct {
	Format     string `yaml:"format"` // json, html, markdown
	OutputFile string `yaml:"output_file"`
	Verbose    bool   `yaml:"verbose"`
	EnableTUI  bool   `yaml:"enable_tui"`
	QuietMode  bool   `yaml:"quiet_mode"`
}

// DefaultConfig returns the configuration matching spec.md's worked
// five-document scenario: 126 hashes split 42x3, width 32, threshold 0.5.
func DefaultConfig() *Config {
	return &Config{
		Index: IndexConfig{
			Algorithm: AlgorithmMinHash,
			Bands:     42,
			Rows:      3,
			Width:     32,
			Seed:      1,
			Threshold: 0.5,
			Container: "small_vector",
		},
		Ingest: IngestConfig{
			Workers:      8,
			RateLimitRPS: 0,
			CacheResults: true,
		},
		Output: OutputConfig{
			Format:    "json",
			EnableTUI: true,
		},
	}
}

// Load reads and parses a YAML config file, falling back to
// DefaultConfig's values for any field the file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// Validate checks that the index parameters are internally consistent.
func (c *Config) Validate() error {
	if c.Index.Bands <= 0 || c.Index.Rows <= 0 {
		return fmt.Errorf("config: bands and rows must both be positive")
	}
	switch c.Index.Width {
	case 32, 64, 128:
	default:
		return fmt.Errorf("config: width must be 32, 64, or 128, got %d", c.Index.Width)
	}
	if c.Index.Threshold < 0 || c.Index.Threshold > 1 {
		return fmt.Errorf("config: threshold must be in [0,1], got %f", c.Index.Threshold)
	}
	return nil
}
