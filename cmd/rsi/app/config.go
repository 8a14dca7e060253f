package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the main pipeline application configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Data     DataConfig     `yaml:"data"`
	Results  ResultsConfig  `yaml:"results"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// DataConfig points at the directory tree of trial files, one
// sub-directory per subject
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// ResultsConfig controls where result databases are written
type ResultsConfig struct {
	Dir          string `yaml:"dir"`
	MaxBatchSize int    `yaml:"maxBatchSize"`
}

// PipelineConfig is the threshold surface of the detection and analysis
// stages. Zero values fall back to the package defaults.
type PipelineConfig struct {
	Workers int `yaml:"workers" json:"workers"` // trial workers (default: NumCPU)

	LowpassCutoffHz float64 `yaml:"lowpassCutoffHz" json:"lowpassCutoffHz"` // position filter cutoff (default: 15)
	GroundWindowS   float64 `yaml:"groundWindowS" json:"groundWindowS"`     // trailing quiet-standing window (default: 1.5)

	RelThresholdM   float64 `yaml:"relThresholdM" json:"relThresholdM"`     // contact band above ground (default: 0.05)
	MinVelocityPeak float64 `yaml:"minVelocityPeak" json:"minVelocityPeak"` // impact/push-off peak, m/s (default: 1.0)
	DebounceWindowS float64 `yaml:"debounceWindowS" json:"debounceWindowS"` // dead time after each mark (default: 0.05)
	LookbackWindowS float64 `yaml:"lookbackWindowS" json:"lookbackWindowS"` // velocity history at GC (default: 0.4)

	MinJumpHeightM float64 `yaml:"minJumpHeightM" json:"minJumpHeightM"` // minimum valid height (default: 0.05)
	GravityMS2     float64 `yaml:"gravityMS2" json:"gravityMS2"`         // gravitational constant (default: 9.81)
}

// LoadConfig reads and validates the yaml configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	config.applyDefaults()
	if err = config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = "info"
	}
	if c.Results.MaxBatchSize <= 0 {
		c.Results.MaxBatchSize = 100
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("config: data directory is required")
	}
	if _, err := ParseLogLevel(c.Settings.LogLevel); err != nil {
		return err
	}

	p := c.Pipeline
	for _, check := range []struct {
		name  string
		value float64
	}{
		{"lowpassCutoffHz", p.LowpassCutoffHz},
		{"groundWindowS", p.GroundWindowS},
		{"relThresholdM", p.RelThresholdM},
		{"minVelocityPeak", p.MinVelocityPeak},
		{"debounceWindowS", p.DebounceWindowS},
		{"lookbackWindowS", p.LookbackWindowS},
		{"minJumpHeightM", p.MinJumpHeightM},
		{"gravityMS2", p.GravityMS2},
	} {
		if check.value < 0 {
			return fmt.Errorf("config: %s must not be negative: %f", check.name, check.value)
		}
	}

	return nil
}

// ParseLogLevel maps a configuration string onto a slog level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("config: unknown log level '%s'", level)
	}
}
