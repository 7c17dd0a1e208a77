// Package config provides configuration management for the sensor converter.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"sensorconv/internal/normalizer"
)

// Default file locations, relative to the working directory.
const (
	DefaultFormatAFile = "data-1.json"
	DefaultFormatBFile = "data-2.json"
	DefaultOutputPath  = "output.json"
	DefaultLogLevel    = "info"

	// EnvPrefix prefixes environment variable overrides, e.g. SENSORCONV_OUTPUT.
	EnvPrefix = "SENSORCONV"
)

// Override keys shared by flags and environment variables.
const (
	KeyFormatAFile = "data-1"
	KeyFormatBFile = "data-2"
	KeyOutput      = "output"
	KeySummary     = "summary"
	KeyMetrics     = "metrics"
	KeyLogLevel    = "log-level"
)

// Configuration validation errors.
var (
	ErrNoSources           = errors.New("at least one source is required")
	ErrNoEnabledSources    = errors.New("at least one source must be enabled")
	ErrSourceMissingFile   = errors.New("file is required")
	ErrSourceInvalidFormat = errors.New("format must be one of: data-1, data-2")
	ErrMissingOutputPath   = errors.New("output.path is required")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete converter configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig lists the source files. Converted readings are merged in the
// order the sources appear here.
type InputConfig struct {
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig represents one input file and its schema.
type SourceConfig struct {
	Name    string `yaml:"name"`
	File    string `yaml:"file"`
	Format  string `yaml:"format"`
	Enabled bool   `yaml:"enabled"`
}

// Label returns Name when set, otherwise the file path.
func (s *SourceConfig) Label() string {
	if s.Name != "" {
		return s.Name
	}

	return s.File
}

// OutputConfig defines where results go.
type OutputConfig struct {
	Path        string `yaml:"path"`
	SummaryPath string `yaml:"summary_path"`
	MetricsPath string `yaml:"metrics_path"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration matching the fixed file layout:
// data-1.json and data-2.json in, output.json out.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Sources: []SourceConfig{
				{Name: normalizer.FormatA, File: DefaultFormatAFile, Format: normalizer.FormatA, Enabled: true},
				{Name: normalizer.FormatB, File: DefaultFormatBFile, Format: normalizer.FormatB, Enabled: true},
			},
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// LoadConfig loads configuration from a YAML file. Fields missing from the
// file keep their default values.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.merge(&file)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Load builds the effective configuration. Precedence, lowest first:
// defaults, the YAML file at path (skipped when path is empty), SENSORCONV_*
// environment variables, then explicitly set flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = fileCfg
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if a := cfg.SourceByFormat(normalizer.FormatA); a != nil {
		v.SetDefault(KeyFormatAFile, a.File)
	}

	if b := cfg.SourceByFormat(normalizer.FormatB); b != nil {
		v.SetDefault(KeyFormatBFile, b.File)
	}

	v.SetDefault(KeyOutput, cfg.Output.Path)
	v.SetDefault(KeySummary, cfg.Output.SummaryPath)
	v.SetDefault(KeyMetrics, cfg.Output.MetricsPath)
	v.SetDefault(KeyLogLevel, cfg.Logging.Level)

	if flags != nil {
		for _, key := range []string{KeyFormatAFile, KeyFormatBFile, KeyOutput, KeySummary, KeyMetrics, KeyLogLevel} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
		}
	}

	if a := cfg.SourceByFormat(normalizer.FormatA); a != nil {
		a.File = v.GetString(KeyFormatAFile)
	}

	if b := cfg.SourceByFormat(normalizer.FormatB); b != nil {
		b.File = v.GetString(KeyFormatBFile)
	}

	cfg.Output.Path = v.GetString(KeyOutput)
	cfg.Output.SummaryPath = v.GetString(KeySummary)
	cfg.Output.MetricsPath = v.GetString(KeyMetrics)
	cfg.Logging.Level = strings.ToLower(v.GetString(KeyLogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// merge copies the sections present in other over c.
func (c *Config) merge(other *Config) {
	if len(other.Input.Sources) > 0 {
		c.Input.Sources = other.Input.Sources
	}

	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}

	if other.Output.SummaryPath != "" {
		c.Output.SummaryPath = other.Output.SummaryPath
	}

	if other.Output.MetricsPath != "" {
		c.Output.MetricsPath = other.Output.MetricsPath
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Input.Sources) == 0 {
		return ErrNoSources
	}

	enabledCount := 0

	for i, src := range c.Input.Sources {
		if src.File == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingFile, i)
		}

		if src.Format != normalizer.FormatA && src.Format != normalizer.FormatB {
			return fmt.Errorf("%w: source[%d]", ErrSourceInvalidFormat, i)
		}

		if src.Enabled {
			enabledCount++
		}
	}

	if enabledCount == 0 {
		return ErrNoEnabledSources
	}

	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// GetEnabledSources returns only enabled sources, in configured order.
func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Input.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// SourceByFormat returns the first source with the given format, or nil.
func (c *Config) SourceByFormat(format string) *SourceConfig {
	for i := range c.Input.Sources {
		if c.Input.Sources[i].Format == format {
			return &c.Input.Sources[i]
		}
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, Output: %s, LogLevel: %s}",
		len(c.Input.Sources),
		c.Output.Path,
		c.Logging.Level,
	)
}
