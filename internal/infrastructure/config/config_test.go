package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, "product-catalog", cfg.OTLP.ServiceName)
	assert.True(t, cfg.OTLP.Enabled)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
storage:
  type: postgresql
  postgresql:
    url: postgres://file/db
    max_conns: 3
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("POSTGRES_URL", "postgres://env/db")
	t.Setenv("OTEL_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, StoragePostgreSQL, cfg.Storage.Type)
	assert.Equal(t, "postgres://env/db", cfg.Storage.PostgreSQL.URL)
	assert.Equal(t, 3, cfg.Storage.PostgreSQL.MaxConns)
	assert.False(t, cfg.OTLP.Enabled)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_TYPE=memory\nSERVER_PORT=7070\n"), 0o600))

	// godotenv sets process env directly; restore it after the test
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("SERVER_PORT", "")
	os.Unsetenv("STORAGE_TYPE")
	os.Unsetenv("SERVER_PORT")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, "7070", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown storage", func(c *Config) { c.Storage.Type = "cassandra" }, "unknown storage type"},
		{"postgres without url", func(c *Config) { c.Storage.Type = StoragePostgreSQL }, "POSTGRES_URL"},
		{"mongo without url", func(c *Config) { c.Storage.Type = StorageMongoDB }, "MONGODB_URL"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Log.Level = "WARN"
	assert.NoError(t, cfg.Validate())
}

func TestInvalidEnvValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("POSTGRES_MAX_CONNS", "many")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "POSTGRES_MAX_CONNS")
}
