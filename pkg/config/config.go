// Package config provides configuration loading and management for texturemeasures.
// It handles loading configuration and sample lists from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"texturemeasures/internal/models"
	"texturemeasures/pkg/glcm"
	"texturemeasures/pkg/sampler"
)

// CombinationConfig is one (direction, step) entry of the schedule.
type CombinationConfig struct {
	// Direction in degrees: 0, 90, 180 or 270.
	Direction int `yaml:"direction"`

	// Step is the neighbour distance in pixels.
	Step int `yaml:"step"`
}

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Processing parameters.
	Processing struct {
		// NumCores specifies how many regions are measured concurrently.
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Sampling parameters.
	Sampling struct {
		// Radius r gives a (2r+1)x(2r+1) analysis window around each sample.
		Radius int `yaml:"radius"`

		// Boundary decides what happens to windows crossing the image edge:
		// "reject" or "clip".
		Boundary string `yaml:"boundary"`
	} `yaml:"sampling"`

	// Texture parameters.
	Texture struct {
		// Combinations is the ordered (direction, step) schedule.
		Combinations []CombinationConfig `yaml:"combinations"`

		// Features lists the enabled features; empty enables all five.
		Features []string `yaml:"features"`

		// CorrelationPolicy is "nan", "zero" or "error".
		CorrelationPolicy string `yaml:"correlationPolicy"`
	} `yaml:"texture"`

	// Output parameters.
	Output struct {
		// File is the report path; empty writes to stdout.
		File string `yaml:"file"`

		// Append adds to an existing report instead of replacing it.
		Append bool `yaml:"append"`

		// SaveIntermediaryResults writes a GLCM image per sample and combination.
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// IntermediaryDir receives the GLCM images.
		IntermediaryDir string `yaml:"intermediaryDir"`

		// Overlay is an optional image path showing the analysed windows.
		Overlay string `yaml:"overlay"`

		// Verbose controls the level of logging output.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.NumCores = runtime.NumCPU()

	cfg.Sampling.Radius = 10
	cfg.Sampling.Boundary = "reject"

	for _, c := range glcm.DefaultCombinations() {
		cfg.Texture.Combinations = append(cfg.Texture.Combinations, CombinationConfig{
			Direction: c.Direction.Degrees(),
			Step:      c.Step,
		})
	}
	cfg.Texture.Features = glcm.AllFeatures.Names()
	cfg.Texture.CorrelationPolicy = "nan"

	cfg.Output.File = "TextureMeasures.txt"
	cfg.Output.Append = true
	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.IntermediaryDir = "intermediary_results"
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path.
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Combinations converts the configured schedule to typed combinations.
func (c *Config) Combinations() ([]glcm.Combination, error) {
	if len(c.Texture.Combinations) == 0 {
		return nil, fmt.Errorf("texture.combinations must not be empty")
	}
	combos := make([]glcm.Combination, 0, len(c.Texture.Combinations))
	for i, cc := range c.Texture.Combinations {
		dir, err := glcm.ParseDirection(cc.Direction)
		if err != nil {
			return nil, fmt.Errorf("texture.combinations[%d]: %w", i, err)
		}
		if cc.Step <= 0 {
			return nil, fmt.Errorf("texture.combinations[%d]: step must be positive (got %d)", i, cc.Step)
		}
		combos = append(combos, glcm.Combination{Direction: dir, Step: cc.Step})
	}
	return combos, nil
}

// Extractor returns the configured feature extractor.
func (c *Config) Extractor() (glcm.Extractor, error) {
	set, err := glcm.ParseFeatureSet(c.Texture.Features)
	if err != nil {
		return glcm.Extractor{}, fmt.Errorf("texture.features: %w", err)
	}
	policy, err := glcm.ParseCorrelationPolicy(c.Texture.CorrelationPolicy)
	if err != nil {
		return glcm.Extractor{}, fmt.Errorf("texture.correlationPolicy: %w", err)
	}
	return glcm.Extractor{Features: set, Correlation: policy}, nil
}

// BoundaryPolicy returns the configured window boundary policy.
func (c *Config) BoundaryPolicy() (sampler.BoundaryPolicy, error) {
	return sampler.ParseBoundaryPolicy(c.Sampling.Boundary)
}

// Params builds sampler parameters from the configuration.
func (c *Config) Params() (*sampler.Params, error) {
	if c.Sampling.Radius < 1 {
		return nil, fmt.Errorf("sampling.radius must be at least 1 (got %d)", c.Sampling.Radius)
	}
	combos, err := c.Combinations()
	if err != nil {
		return nil, err
	}
	extractor, err := c.Extractor()
	if err != nil {
		return nil, err
	}
	boundary, err := c.BoundaryPolicy()
	if err != nil {
		return nil, fmt.Errorf("sampling.boundary: %w", err)
	}

	return &sampler.Params{
		Radius:                  c.Sampling.Radius,
		Combinations:            combos,
		Extractor:               extractor,
		NumWorkers:              c.Processing.NumCores,
		Boundary:                boundary,
		SaveIntermediaryResults: c.Output.SaveIntermediaryResults,
		IntermediaryDir:         c.Output.IntermediaryDir,
	}, nil
}

// Validate checks every typed setting without building anything else.
func (c *Config) Validate() error {
	_, err := c.Params()
	return err
}

// SampleFile is the YAML layout of a sample list.
type SampleFile struct {
	// Image optionally names the image the samples were placed on.
	Image string `yaml:"image,omitempty"`

	Samples []models.Sample `yaml:"samples"`
}

// LoadSamples reads a sample list from a YAML file. Every sample needs a
// label. Coordinates may lie outside the image: whether such a sample is
// measured is decided by the sampling boundary policy.
func LoadSamples(path string) (*SampleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading samples file: %w", err)
	}

	var sf SampleFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("error parsing samples file: %w", err)
	}

	for i, s := range sf.Samples {
		if strings.TrimSpace(s.Label) == "" {
			return nil, fmt.Errorf("samples[%d]: label must not be empty", i)
		}
	}

	return &sf, nil
}
