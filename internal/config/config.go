package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"hpoannotate/domain/annotation"
	"hpoannotate/internal/errors"

	"gopkg.in/yaml.v3"
)

// DefaultDatasetFile is the dataset read when nothing else is configured
const DefaultDatasetFile = "./data/hpo_diverse_sentences_0-50.csv"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Annotation AnnotationConfig `yaml:"annotation"`
	Export     ExportConfig     `yaml:"export"`
	Session    SessionConfig    `yaml:"session"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// DataConfig holds input file paths
type DataConfig struct {
	DatasetFile    string `yaml:"dataset_file"`
	GuidelinesFile string `yaml:"guidelines_file"`
}

// AnnotationConfig holds the interaction settings of the form
type AnnotationConfig struct {
	Variant     string `yaml:"variant"`
	UnsetPolicy string `yaml:"unset_policy"`
	ShowSpan    bool   `yaml:"show_span"`
}

// ExportConfig holds export settings
type ExportConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

// SessionConfig holds session lifetime settings
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "release",
		},
		Data: DataConfig{
			DatasetFile: DefaultDatasetFile,
		},
		Annotation: AnnotationConfig{
			Variant:     string(annotation.VariantRadio),
			UnsetPolicy: string(annotation.PolicyDefaultYes),
		},
		Export: ExportConfig{
			Format: "csv",
		},
		Session: SessionConfig{
			TTL: 12 * time.Hour,
		},
		Log: LogConfig{
			Level: "INFO",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.mergeFile(path); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	config.applyEnv()

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func (c *Config) mergeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigInvalid("cannot read " + path + ": " + err.Error())
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return errors.ConfigInvalid("cannot parse " + path + ": " + err.Error())
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.GinMode = getEnvOrDefault("GIN_MODE", c.Server.GinMode)

	c.Data.DatasetFile = getEnvOrDefault("DATASET_FILE", c.Data.DatasetFile)
	c.Data.GuidelinesFile = getEnvOrDefault("GUIDELINES_FILE", c.Data.GuidelinesFile)

	c.Annotation.Variant = getEnvOrDefault("ANNOTATION_VARIANT", c.Annotation.Variant)
	c.Annotation.UnsetPolicy = getEnvOrDefault("UNSET_POLICY", c.Annotation.UnsetPolicy)
	c.Annotation.ShowSpan = getEnvBoolOrDefault("SHOW_SPAN", c.Annotation.ShowSpan)

	c.Export.Format = getEnvOrDefault("EXPORT_FORMAT", c.Export.Format)
	c.Export.Dir = getEnvOrDefault("EXPORT_DIR", c.Export.Dir)

	c.Session.TTL = getEnvDurationOrDefault("SESSION_TTL", c.Session.TTL)
	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Metrics.Enabled = getEnvBoolOrDefault("METRICS_ENABLED", c.Metrics.Enabled)
}

// Validate checks enumerated settings and required values
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if c.Data.DatasetFile == "" {
		return errors.ConfigInvalid("dataset file is required")
	}
	if _, err := annotation.ParseVariant(c.Annotation.Variant); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if _, err := annotation.ParseUnsetPolicy(c.Annotation.UnsetPolicy); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	switch strings.ToLower(c.Export.Format) {
	case "csv", "xlsx":
	default:
		return errors.ConfigInvalid("unknown export format " + strconv.Quote(c.Export.Format) + " (want csv or xlsx)")
	}
	if c.Session.TTL <= 0 {
		return errors.ConfigInvalid("session TTL must be positive")
	}
	return nil
}

// SessionOptions converts the annotation settings to session options
func (c *Config) SessionOptions() annotation.Options {
	variant, _ := annotation.ParseVariant(c.Annotation.Variant)
	policy, _ := annotation.ParseUnsetPolicy(c.Annotation.UnsetPolicy)
	return annotation.Options{
		Variant: variant,
		Policy:  policy,
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
