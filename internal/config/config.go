package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors
var (
	ErrUnsupportedStorage = errors.New("storage.type must be one of: mongodb, dynamodb, postgresql")
	ErrMissingMongoURI    = errors.New("MONGODB_URI or mongo.uri in the secrets file is required for mongodb storage")
	ErrMissingPostgresURI = errors.New("POSTGRES_URI or postgres.uri in the secrets file is required for postgresql storage")
	ErrMissingTableName   = errors.New("TABLE_NAME is required")
	ErrInvalidCacheTTL    = errors.New("CACHE_TTL must be positive")
	ErrInvalidPort        = errors.New("SERVER_PORT must be between 1 and 65535")
	ErrInvalidLogLevel    = errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
)

// Config holds all configuration for the application
type Config struct {
	Storage   StorageConfig
	Cache     CacheConfig
	Server    ServerConfig
	Dashboard DashboardConfig
	LogLevel  string
}

// StorageConfig holds storage-related configuration
type StorageConfig struct {
	Type        string // "mongodb", "dynamodb", "postgresql"
	MongoDBURI  string
	Database    string
	Collection  string
	Projection  bool   // false requests every field
	Region      string // For AWS DynamoDB
	TableName   string // DynamoDB table or Postgres table
	Endpoint    string // Custom endpoint for local testing
	PostgresURI string
	Timeout     time.Duration
}

// CacheConfig holds fetch memoization settings
type CacheConfig struct {
	TTL time.Duration
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// DashboardConfig holds presentation settings
type DashboardConfig struct {
	WordCloudLimit int
	TopPosts       int
}

// Secrets mirrors the layout of the optional secrets file
type Secrets struct {
	Mongo struct {
		URI string `yaml:"uri"`
	} `yaml:"mongo"`
	Postgres struct {
		URI string `yaml:"uri"`
	} `yaml:"postgres"`
}

// Load loads configuration from environment variables with defaults.
// A .env file is applied first without overriding variables already set, then
// connection strings missing from the environment are taken from the secrets file.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := gotenv.Load(envFile); err != nil {
		slog.Debug("[Config] No .env file found, using OS environment", slog.String("file", envFile))
	}

	cfg := &Config{
		Storage: StorageConfig{
			Type:        getEnv("STORAGE_TYPE", "mongodb"),
			MongoDBURI:  getEnv("MONGODB_URI", ""),
			Database:    getEnv("MONGODB_DATABASE", "elections"),
			Collection:  getEnv("MONGODB_COLLECTION", "monitoring"),
			Projection:  getEnvBool("MONGODB_PROJECTION", true),
			Region:      getEnv("AWS_REGION", "us-west-2"),
			TableName:   getEnv("TABLE_NAME", "monitoring"),
			Endpoint:    getEnv("DYNAMODB_ENDPOINT", ""), // For local DynamoDB
			PostgresURI: getEnv("POSTGRES_URI", ""),
			Timeout:     getEnvDuration("STORAGE_TIMEOUT", 10*time.Second),
		},
		Cache: CacheConfig{
			TTL: getEnvDuration("CACHE_TTL", 60*time.Second),
		},
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Dashboard: DashboardConfig{
			WordCloudLimit: getEnvInt("WORDCLOUD_LIMIT", 100),
			TopPosts:       getEnvInt("TOP_POSTS", 10),
		},
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}

	secretsFile := getEnv("SECRETS_FILE", "secrets.yaml")
	if err := cfg.applySecrets(secretsFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applySecrets fills connection strings that the environment left empty
func (c *Config) applySecrets(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read secrets file %s: %w", path, err)
	}

	var secrets Secrets
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("failed to parse secrets file %s: %w", path, err)
	}

	if c.Storage.MongoDBURI == "" {
		c.Storage.MongoDBURI = secrets.Mongo.URI
	}
	if c.Storage.PostgresURI == "" {
		c.Storage.PostgresURI = secrets.Postgres.URI
	}
	return nil
}

// Validate checks the configuration for values the service cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "mongodb":
		if c.Storage.MongoDBURI == "" {
			return ErrMissingMongoURI
		}
	case "dynamodb":
		if c.Storage.TableName == "" {
			return ErrMissingTableName
		}
	case "postgresql":
		if c.Storage.PostgresURI == "" {
			return ErrMissingPostgresURI
		}
		if c.Storage.TableName == "" {
			return ErrMissingTableName
		}
	default:
		return ErrUnsupportedStorage
	}

	if c.Cache.TTL <= 0 {
		return ErrInvalidCacheTTL
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
