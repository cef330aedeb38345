// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/geodatum/internal/domain"
	"github.com/jobrunner/geodatum/internal/geodesy"
)

// Input formats for geodetic coordinates.
const (
	InputDMS     = "dms"
	InputDecimal = "decimal"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds all application configuration.
type Config struct {
	Convert ConvertConfig `mapstructure:"convert"`
	Solver  SolverConfig  `mapstructure:"solver"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Check   CheckConfig   `mapstructure:"check"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ConvertConfig holds conversion defaults.
type ConvertConfig struct {
	Pipeline    string `mapstructure:"pipeline"`    // empty = catalog default
	Input       string `mapstructure:"input"`       // dms, decimal
	Concurrency int    `mapstructure:"concurrency"` // batch workers, 0 = GOMAXPROCS
}

// SolverConfig holds the Cartesian to geodetic solver limits.
type SolverConfig struct {
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"` // radians
}

// Solver returns the configured solver.
func (c *SolverConfig) Solver() geodesy.Solver {
	return geodesy.Solver{MaxIterations: c.MaxIterations, Tolerance: c.Tolerance}
}

// CatalogConfig holds pipeline catalog configuration.
type CatalogConfig struct {
	Path     string        `mapstructure:"path"` // empty = builtin catalog
	Watch    bool          `mapstructure:"watch"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// CheckConfig holds pipeline self-check configuration.
type CheckConfig struct {
	RoundTripTolerance float64 `mapstructure:"round_trip_tolerance"` // meters
}

// OutputConfig holds result formatting configuration.
type OutputConfig struct {
	Format    string `mapstructure:"format"`    // text, json
	Precision int    `mapstructure:"precision"` // decimals for plane coordinates
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults sets the default configuration values.
func Defaults() {
	// Conversion defaults
	viper.SetDefault("convert.pipeline", "")
	viper.SetDefault("convert.input", InputDMS)
	viper.SetDefault("convert.concurrency", 0)

	// Solver defaults
	viper.SetDefault("solver.max_iterations", geodesy.DefaultMaxIterations)
	viper.SetDefault("solver.tolerance", geodesy.DefaultTolerance)

	// Catalog defaults
	viper.SetDefault("catalog.path", "")
	viper.SetDefault("catalog.watch", false)
	viper.SetDefault("catalog.debounce", 500*time.Millisecond)

	// Check defaults
	viper.SetDefault("check.round_trip_tolerance", 0.005)

	// Output defaults
	viper.SetDefault("output.format", OutputText)
	viper.SetDefault("output.precision", 4)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.namespace", "geodatum")

	// Logging defaults
	viper.SetDefault("logging.level", "warn")
	viper.SetDefault("logging.format", "text")
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	// Environment variable binding
	viper.SetEnvPrefix("GEODATUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/geodatum")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Convert.Input {
	case InputDMS, InputDecimal:
	default:
		return &domain.ConfigError{Field: "convert.input", Message: fmt.Sprintf("unknown input format %q", c.Convert.Input)}
	}
	if c.Convert.Concurrency < 0 {
		return &domain.ConfigError{Field: "convert.concurrency", Message: "must not be negative"}
	}

	if c.Solver.MaxIterations < 1 {
		return &domain.ConfigError{Field: "solver.max_iterations", Message: "must be at least 1"}
	}
	if c.Solver.Tolerance <= 0 {
		return &domain.ConfigError{Field: "solver.tolerance", Message: "must be positive"}
	}

	if c.Catalog.Watch && c.Catalog.Path == "" {
		return &domain.ConfigError{Field: "catalog.watch", Message: "watching requires catalog.path"}
	}

	if c.Check.RoundTripTolerance < 0 {
		return &domain.ConfigError{Field: "check.round_trip_tolerance", Message: "must not be negative"}
	}

	switch c.Output.Format {
	case OutputText, OutputJSON:
	default:
		return &domain.ConfigError{Field: "output.format", Message: fmt.Sprintf("unknown output format %q", c.Output.Format)}
	}
	if c.Output.Precision < 0 || c.Output.Precision > 12 {
		return &domain.ConfigError{Field: "output.precision", Message: "must be between 0 and 12"}
	}

	return nil
}
