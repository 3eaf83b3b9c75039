package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	StorageMemory     = "memory"
	StorageSQLite     = "sqlite"
	StoragePostgreSQL = "postgresql"
	StorageMongoDB    = "mongodb"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	OTLP    OTLPConfig    `yaml:"otlp"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type OTLPConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
}

// LogConfig selects the log output format ("json" or "text") and level
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type StorageConfig struct {
	// Type is one of memory, sqlite, postgresql, mongodb
	Type       string           `yaml:"type"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgreSQLConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

type MongoDBConfig struct {
	URL      string `yaml:"url"`
	Database string `yaml:"database"`
}

// Default returns the configuration used when nothing else is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
		},
		OTLP: OTLPConfig{
			Enabled:     true,
			Endpoint:    "localhost:4317",
			ServiceName: "product-catalog",
			Environment: "development",
		},
		Log: LogConfig{
			Format: "json",
			Level:  "debug",
		},
		Storage: StorageConfig{
			Type:       StorageSQLite,
			SQLite:     SQLiteConfig{Path: "data/products.db"},
			PostgreSQL: PostgreSQLConfig{MaxConns: 10},
			MongoDB:    MongoDBConfig{Database: "products"},
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, an optional .env file and environment variables, in
// increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)

	c.OTLP.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLP.Endpoint)
	c.OTLP.ServiceName = getEnv("OTEL_SERVICE_NAME", c.OTLP.ServiceName)
	c.OTLP.Environment = getEnv("OTEL_ENVIRONMENT", c.OTLP.Environment)
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OTEL_ENABLED %q: %w", v, err)
		}
		c.OTLP.Enabled = enabled
	}

	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	c.Storage.Type = getEnv("STORAGE_TYPE", c.Storage.Type)
	c.Storage.SQLite.Path = getEnv("SQLITE_PATH", c.Storage.SQLite.Path)
	c.Storage.PostgreSQL.URL = getEnv("POSTGRES_URL", c.Storage.PostgreSQL.URL)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POSTGRES_MAX_CONNS %q: %w", v, err)
		}
		c.Storage.PostgreSQL.MaxConns = n
	}
	c.Storage.MongoDB.URL = getEnv("MONGODB_URL", c.Storage.MongoDB.URL)
	c.Storage.MongoDB.Database = getEnv("MONGODB_DATABASE", c.Storage.MongoDB.Database)
	return nil
}

// Validate checks that the selected storage backend has what it needs
func (c *Config) Validate() error {
	switch strings.ToLower(c.Storage.Type) {
	case StorageMemory, StorageSQLite:
	case StoragePostgreSQL:
		if c.Storage.PostgreSQL.URL == "" {
			return fmt.Errorf("POSTGRES_URL is required for storage type %s", StoragePostgreSQL)
		}
	case StorageMongoDB:
		if c.Storage.MongoDB.URL == "" {
			return fmt.Errorf("MONGODB_URL is required for storage type %s", StorageMongoDB)
		}
	default:
		return fmt.Errorf("unknown storage type: %s (valid: memory, sqlite, postgresql, mongodb)", c.Storage.Type)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format: %s (valid: json, text)", c.Log.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level: %s (valid: debug, info, warn, error)", c.Log.Level)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
