package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the loader at files that do not exist and clears the
// variables the tests care about.
func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("SECRETS_FILE", filepath.Join(dir, "missing.yaml"))
	for _, key := range []string{"STORAGE_TYPE", "MONGODB_URI", "POSTGRES_URI", "CACHE_TTL", "SERVER_PORT", "LOG_LEVEL", "MONGODB_PROJECTION"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb", cfg.Storage.Type)
	assert.Equal(t, "elections", cfg.Storage.Database)
	assert.Equal(t, "monitoring", cfg.Storage.Collection)
	assert.True(t, cfg.Storage.Projection)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Dashboard.WordCloudLimit)
	assert.Equal(t, 10, cfg.Dashboard.TopPosts)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MONGODB_PROJECTION", "false")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.Storage.MongoDBURI)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Storage.Projection)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	isolate(t)
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("SERVER_PORT", "eighty")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_SecretsFile(t *testing.T) {
	dir := isolate(t)
	secrets := filepath.Join(dir, "secrets.yaml")
	require.NoError(t, os.WriteFile(secrets, []byte("mongo:\n  uri: mongodb://secret:27017\npostgres:\n  uri: postgres://secret/db\n"), 0o600))
	t.Setenv("SECRETS_FILE", secrets)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://secret:27017", cfg.Storage.MongoDBURI)
	assert.Equal(t, "postgres://secret/db", cfg.Storage.PostgresURI)
}

func TestLoad_EnvWinsOverSecrets(t *testing.T) {
	dir := isolate(t)
	secrets := filepath.Join(dir, "secrets.yaml")
	require.NoError(t, os.WriteFile(secrets, []byte("mongo:\n  uri: mongodb://secret:27017\n"), 0o600))
	t.Setenv("SECRETS_FILE", secrets)
	t.Setenv("MONGODB_URI", "mongodb://env:27017")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://env:27017", cfg.Storage.MongoDBURI)
}

func TestLoad_MalformedSecrets(t *testing.T) {
	dir := isolate(t)
	secrets := filepath.Join(dir, "secrets.yaml")
	require.NoError(t, os.WriteFile(secrets, []byte("mongo: [unclosed"), 0o600))
	t.Setenv("SECRETS_FILE", secrets)

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse secrets file")
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TOP_POSTS=5\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("TOP_POSTS", "")
	require.NoError(t, os.Unsetenv("TOP_POSTS"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Dashboard.TopPosts)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:  StorageConfig{Type: "mongodb", MongoDBURI: "mongodb://localhost", TableName: "monitoring"},
			Cache:    CacheConfig{TTL: time.Minute},
			Server:   ServerConfig{Port: 8080},
			LogLevel: "info",
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "redis" }, want: ErrUnsupportedStorage},
		{name: "missing mongo uri", mutate: func(c *Config) { c.Storage.MongoDBURI = "" }, want: ErrMissingMongoURI},
		{name: "postgres without uri", mutate: func(c *Config) { c.Storage.Type = "postgresql" }, want: ErrMissingPostgresURI},
		{name: "dynamodb without table", mutate: func(c *Config) {
			c.Storage.Type = "dynamodb"
			c.Storage.TableName = ""
		}, want: ErrMissingTableName},
		{name: "zero ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }, want: ErrInvalidCacheTTL},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, want: ErrInvalidPort},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, want: ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
