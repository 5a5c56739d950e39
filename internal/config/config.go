package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathConfig
	Generator GeneratorConfig
	Pipeline  PipelineConfig
	Database  DatabaseConfig
}

// PathConfig holds file system paths for inputs and artifacts
type PathConfig struct {
	InputFile string // optional: CSV to clean instead of generating
	OutputDir string // cleaned CSV, report, charts, workbook land here
}

// GeneratorConfig holds synthetic dataset settings
type GeneratorConfig struct {
	Count           int
	Seed            int64
	MissingPerField int
}

// PipelineConfig holds cleaning behavior settings
type PipelineConfig struct {
	// StrictImputation fails on an empty imputation group instead of
	// falling back to the global statistic.
	StrictImputation bool
}

// DatabaseConfig holds optional Postgres settings. An empty URL disables
// persistence entirely.
type DatabaseConfig struct {
	URL string
}

// Load reads configuration from the environment, honoring a .env file when
// one is present in the working directory.
func Load() (*Config, error) {
	// Missing .env is not an error; env vars may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Paths: PathConfig{
			InputFile: getEnvOrDefault("ECOTHREAD_INPUT", ""),
			OutputDir: getEnvOrDefault("ECOTHREAD_OUT", "out"),
		},
		Generator: GeneratorConfig{
			Count:           getEnvIntOrDefault("ECOTHREAD_COUNT", 300),
			Seed:            getEnvInt64OrDefault("ECOTHREAD_SEED", 42),
			MissingPerField: getEnvIntOrDefault("ECOTHREAD_MISSING", 5),
		},
		Pipeline: PipelineConfig{
			StrictImputation: getEnvBoolOrDefault("ECOTHREAD_STRICT_IMPUTATION", false),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Generator.Count <= 0 {
		return fmt.Errorf("ECOTHREAD_COUNT must be positive, got %d", cfg.Generator.Count)
	}
	if cfg.Generator.MissingPerField < 0 {
		return fmt.Errorf("ECOTHREAD_MISSING cannot be negative, got %d", cfg.Generator.MissingPerField)
	}
	if cfg.Generator.MissingPerField > cfg.Generator.Count {
		return fmt.Errorf("ECOTHREAD_MISSING (%d) exceeds record count (%d)",
			cfg.Generator.MissingPerField, cfg.Generator.Count)
	}
	if cfg.Paths.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
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
