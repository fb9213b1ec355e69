// File: internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Layout() LayoutConfig
	Output() OutputConfig
	Batch() BatchConfig

	// Layout Setters
	SetViewport(width, height float64)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg LoggerConfig `mapstructure:"logger" yaml:"logger"`
	LayoutCfg LayoutConfig `mapstructure:"layout" yaml:"layout"`
	OutputCfg OutputConfig `mapstructure:"output" yaml:"output"`
	BatchCfg  BatchConfig  `mapstructure:"batch" yaml:"batch"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig { return c.LoggerCfg }
func (c *Config) Layout() LayoutConfig { return c.LayoutCfg }
func (c *Config) Output() OutputConfig { return c.OutputCfg }
func (c *Config) Batch() BatchConfig   { return c.BatchCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetViewport(width, height float64) {
	c.LayoutCfg.ViewportWidth = width
	c.LayoutCfg.ViewportHeight = height
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// Measurer names accepted by layout.measurer.
const (
	MeasurerPixel = "pixel"
	MeasurerCell  = "cell"
	MeasurerNone  = "none"
)

// LayoutConfig configures the viewport trees are measured against and how
// text leaves are sized.
type LayoutConfig struct {
	ViewportWidth  float64 `mapstructure:"viewport_width" yaml:"viewport_width"`
	ViewportHeight float64 `mapstructure:"viewport_height" yaml:"viewport_height"`
	Measurer       string  `mapstructure:"measurer" yaml:"measurer"`
}

// Output formats accepted by output.format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// OutputConfig controls how snapshots are written.
type OutputConfig struct {
	Format   string `mapstructure:"format" yaml:"format"`
	Compress bool   `mapstructure:"compress" yaml:"compress"`
	Indent   bool   `mapstructure:"indent" yaml:"indent"`
}

// BatchConfig bounds how many documents are laid out at once.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "torin")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Layout --
	v.SetDefault("layout.viewport_width", 1280.0)
	v.SetDefault("layout.viewport_height", 720.0)
	v.SetDefault("layout.measurer", MeasurerPixel)

	// -- Output --
	v.SetDefault("output.format", FormatJSON)
	v.SetDefault("output.compress", false)
	v.SetDefault("output.indent", true)

	// -- Batch --
	v.SetDefault("batch.concurrency", 4)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.LayoutCfg.Validate(); err != nil {
		return fmt.Errorf("layout configuration invalid: %w", err)
	}
	switch c.OutputCfg.Format {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("output.format must be one of %q or %q, got %q", FormatJSON, FormatText, c.OutputCfg.Format)
	}
	if c.BatchCfg.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be a positive integer")
	}
	return nil
}

// Validate checks the layout settings.
func (l *LayoutConfig) Validate() error {
	if l.ViewportWidth <= 0 || l.ViewportHeight <= 0 {
		return fmt.Errorf("viewport_width and viewport_height must be positive")
	}
	switch l.Measurer {
	case MeasurerPixel, MeasurerCell, MeasurerNone:
		return nil
	default:
		return fmt.Errorf("measurer must be one of pixel, cell or none, got %q", l.Measurer)
	}
}
