package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is the emulator configuration.
type Config struct {
	Server     ServerConfig     `toml:"server" validate:"required"`
	Storage    StorageConfig    `toml:"storage" validate:"required"`
	Projects   ProjectsConfig   `toml:"projects" validate:"required"`
	Federation FederationConfig `toml:"federation"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	DataDir        string `toml:"data_dir" validate:"required"` // One DuckDB file per project lives here
	ResetOnStartup bool   `toml:"reset_on_startup"`             // Delete all project files on startup for clean runs
}

// ProjectsConfig names the catalog roots. The internal project holds the
// metadata tables and is never surfaced through the API.
type ProjectsConfig struct {
	Default         string `toml:"default" validate:"required"`
	DefaultDataset  string `toml:"default_dataset" validate:"required"`
	Internal        string `toml:"internal" validate:"required,nefield=Default"`
	InternalDataset string `toml:"internal_dataset" validate:"required"`
}

// FederationConfig drives EXTERNAL_QUERY. The connection ID is the only one
// the translator accepts; the URI is the Postgres DSN the engine attaches.
type FederationConfig struct {
	ConnectionID string `toml:"connection_id"`
	URI          string `toml:"uri"`
	Catalog      string `toml:"catalog"` // Attached catalog name inside the engine
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "trace", "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in the TOML file.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 9050,
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Projects: ProjectsConfig{
			Default:         "local",
			DefaultDataset:  "local",
			Internal:        "bigquery-internal",
			InternalDataset: "internal",
		},
		Federation: FederationConfig{
			ConnectionID: "us.default",
			URI:          "", // User must provide a Postgres DSN to enable EXTERNAL_QUERY
			Catalog:      "federated",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// An empty path keeps the defaults.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			e := fieldErrors[0]
			return fmt.Errorf("invalid config: field %s fails %q", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Server configuration
	if port := os.Getenv("BIGQUERY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("BIGQUERY_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if dataDir := os.Getenv("BIGQUERY_DATA_DIR"); dataDir != "" {
		config.Storage.DataDir = dataDir
	}
	if reset := os.Getenv("BIGQUERY_RESET_ON_STARTUP"); reset != "" {
		if r, err := strconv.ParseBool(reset); err == nil {
			config.Storage.ResetOnStartup = r
		}
	}

	// Project configuration
	if project := os.Getenv("BIGQUERY_DEFAULT_PROJECT"); project != "" {
		config.Projects.Default = project
	}
	if dataset := os.Getenv("BIGQUERY_DEFAULT_DATASET"); dataset != "" {
		config.Projects.DefaultDataset = dataset
	}

	// Federation configuration
	if id := os.Getenv("BIGQUERY_FEDERATION_CONNECTION_ID"); id != "" {
		config.Federation.ConnectionID = id
	}
	if uri := os.Getenv("BIGQUERY_FEDERATION_URI"); uri != "" {
		config.Federation.URI = uri
	}

	// Logging configuration
	if level := os.Getenv("BIGQUERY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("BIGQUERY_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config.
// Command-line flags have highest priority.
func ApplyFlagOverrides(config *Config, port int, host, dataDir, project string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if dataDir != "" {
		config.Storage.DataDir = dataDir
	}
	if project != "" {
		config.Projects.Default = project
	}
}
