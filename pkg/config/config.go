// Package config provides configuration structures and loading logic for the
// resilience core.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of the resilience core for one service.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Breaker   BreakerConfig   `yaml:"circuit_breaker"`
	Perf      PerfConfig      `yaml:"performance"`
	Hardened  bool            `yaml:"hardened"`
}

// ServiceConfig identifies the linking service.
type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

// LoggingConfig holds configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// TelemetryConfig holds configuration for OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
	EnableRetry      bool          `yaml:"enable_retry"`
	MaxRetries       int           `yaml:"max_retries"`
}

// UnmarshalYAML accepts durations in the human form ("30s", "1m"). Fields
// absent from the document keep their current values, so defaults survive
// partial files.
func (b *BreakerConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		FailureThreshold *int   `yaml:"failure_threshold"`
		RecoveryTimeout  string `yaml:"recovery_timeout"`
		EnableRetry      *bool  `yaml:"enable_retry"`
		MaxRetries       *int   `yaml:"max_retries"`
	}{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.FailureThreshold != nil {
		b.FailureThreshold = *raw.FailureThreshold
	}
	if raw.RecoveryTimeout != "" {
		d, err := time.ParseDuration(raw.RecoveryTimeout)
		if err != nil {
			return fmt.Errorf("invalid recovery_timeout: %w", err)
		}
		b.RecoveryTimeout = d
	}
	if raw.EnableRetry != nil {
		b.EnableRetry = *raw.EnableRetry
	}
	if raw.MaxRetries != nil {
		b.MaxRetries = *raw.MaxRetries
	}
	return nil
}

// PerfConfig holds the performance stage thresholds.
type PerfConfig struct {
	WarnThreshold  time.Duration `yaml:"warn_threshold"`
	ErrorThreshold time.Duration `yaml:"error_threshold"`
}

// UnmarshalYAML accepts durations in the human form ("500ms", "2s").
func (p *PerfConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		WarnThreshold  string `yaml:"warn_threshold"`
		ErrorThreshold string `yaml:"error_threshold"`
	}{}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.WarnThreshold != "" {
		d, err := time.ParseDuration(raw.WarnThreshold)
		if err != nil {
			return fmt.Errorf("invalid warn_threshold: %w", err)
		}
		p.WarnThreshold = d
	}
	if raw.ErrorThreshold != "" {
		d, err := time.ParseDuration(raw.ErrorThreshold)
		if err != nil {
			return fmt.Errorf("invalid error_threshold: %w", err)
		}
		p.ErrorThreshold = d
	}
	return nil
}

// Default returns the platform defaults.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{Name: "unknown", Environment: "development"},
		Logging: LoggingConfig{Level: "info"},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  60 * time.Second,
			MaxRetries:       3,
		},
		Perf: PerfConfig{
			WarnThreshold:  time.Second,
			ErrorThreshold: 5 * time.Second,
		},
	}
}

// Load reads configuration from a file and applies environment variable
// overrides. An empty path loads defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("COREKIT_SERVICE_NAME"); val != "" {
		cfg.Service.Name = val
	}
	if val := os.Getenv("COREKIT_ENVIRONMENT"); val != "" {
		cfg.Service.Environment = val
	}
	if val := os.Getenv("COREKIT_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("COREKIT_LOG_PRETTY"); val == "true" {
		cfg.Logging.Pretty = true
	}
	if val := os.Getenv("COREKIT_OTLP_ENDPOINT"); val != "" {
		cfg.Telemetry.OTLPEndpoint = val
	}
	if val := os.Getenv("COREKIT_OTLP_INSECURE"); val == "true" {
		cfg.Telemetry.Insecure = true
	}
	if val := os.Getenv("COREKIT_HARDENED"); val == "true" {
		cfg.Hardened = true
	}
	if val := os.Getenv("COREKIT_BREAKER_FAILURE_THRESHOLD"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Breaker.FailureThreshold = n
		}
	}
	if val := os.Getenv("COREKIT_BREAKER_RECOVERY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Breaker.RecoveryTimeout = d
		}
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("service.name must not be empty")
	}
	if c.Breaker.FailureThreshold <= 0 {
		return fmt.Errorf("circuit_breaker.failure_threshold must be positive, got %d", c.Breaker.FailureThreshold)
	}
	if c.Breaker.RecoveryTimeout <= 0 {
		return fmt.Errorf("circuit_breaker.recovery_timeout must be positive, got %s", c.Breaker.RecoveryTimeout)
	}
	if c.Perf.WarnThreshold > c.Perf.ErrorThreshold {
		return fmt.Errorf("performance.warn_threshold %s exceeds error_threshold %s", c.Perf.WarnThreshold, c.Perf.ErrorThreshold)
	}
	return nil
}
