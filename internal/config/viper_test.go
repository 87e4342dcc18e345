package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/finance-dashboard/internal/logging"
)

// clearTestEnvVars makes sure ambient FINDASH_* variables do not leak into a test.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FINDASH_LOG_LEVEL", "FINDASH_LOG_FORMAT", "FINDASH_CSV_DELIMITER",
		"FINDASH_IMPORT_PAGE_SIZE", "FINDASH_STORE_DRIVER", "FINDASH_STORE_POSTGRES_HOST",
		"FINDASH_STORE_POSTGRES_PASSWORD", "FINDASH_STORE_POSTGRES_URL", "FINDASH_SERVER_ADDR",
		"FINDASH_SERVER_ALLOWED_ORIGINS", "DATABASE_URL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	chdirForTest(t, t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.Equal(t, 1000, config.Import.PageSize)
	assert.Empty(t, config.Import.FieldAliases)
	assert.Equal(t, DriverPostgres, config.Store.Driver)
	assert.True(t, config.Store.MigrateOnStart)
	assert.Equal(t, "localhost", config.Store.Postgres.Host)
	assert.Equal(t, 5432, config.Store.Postgres.Port)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, config.Server.AllowedOrigins)
	assert.Equal(t, int64(10), config.Server.MaxUploadMB)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	chdirForTest(t, t.TempDir())

	t.Setenv("FINDASH_LOG_LEVEL", "debug")
	t.Setenv("FINDASH_LOG_FORMAT", "json")
	t.Setenv("FINDASH_CSV_DELIMITER", ";")
	t.Setenv("FINDASH_IMPORT_PAGE_SIZE", "250")
	t.Setenv("FINDASH_STORE_DRIVER", "memory")
	t.Setenv("FINDASH_STORE_POSTGRES_PASSWORD", "s3cret")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, ";", config.CSV.Delimiter)
	assert.Equal(t, 250, config.Import.PageSize)
	assert.Equal(t, DriverMemory, config.Store.Driver)
	assert.Equal(t, "s3cret", config.Store.Postgres.Password)
}

func TestLoad_DatabaseURL(t *testing.T) {
	clearTestEnvVars(t)
	chdirForTest(t, t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/money")

	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/money", config.Store.Postgres.DSN())
}

func TestLoad_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)

	path := writeConfig(t, `
log:
  level: "warn"
csv:
  delimiter: "|"
import:
  page_size: 500
  field_aliases:
    - field: "Started Date"
      aliases: ["Booking Date", "Date"]
store:
  driver: "memory"
server:
  addr: ":9000"
  allowed_origins: ["https://dash.example.com"]
categories:
  seed_file: "categories.yaml"
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "|", config.CSV.Delimiter)
	assert.Equal(t, 500, config.Import.PageSize)
	require.Len(t, config.Import.FieldAliases, 1)
	assert.Equal(t, "Started Date", config.Import.FieldAliases[0].Field)
	assert.Equal(t, []string{"Booking Date", "Date"}, config.Import.FieldAliases[0].Aliases)
	assert.Equal(t, DriverMemory, config.Store.Driver)
	assert.Equal(t, ":9000", config.Server.Addr)
	assert.Equal(t, []string{"https://dash.example.com"}, config.Server.AllowedOrigins)
	assert.Equal(t, "categories.yaml", config.Categories.SeedFile)
}

func TestLoad_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)

	path := writeConfig(t, `
log:
  level: "warn"
csv:
  delimiter: "|"
`)
	t.Setenv("FINDASH_LOG_LEVEL", "error")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level) // env var wins
	assert.Equal(t, "|", config.CSV.Delimiter) // config file value
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearTestEnvVars(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func validConfig() *Config {
	c := &Config{}
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.CSV.Delimiter = ","
	c.Import.PageSize = 1000
	c.Store.Driver = DriverPostgres
	c.Store.Postgres.Host = "localhost"
	c.Server.MaxUploadMB = 10
	return c
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"invalid CSV delimiter", func(c *Config) { c.CSV.Delimiter = ";;" }, "CSV delimiter must be a single character"},
		{"zero page size", func(c *Config) { c.Import.PageSize = 0 }, "import.page_size must be between"},
		{"alias without names", func(c *Config) {
			c.Import.FieldAliases = []FieldAlias{{Field: "Amount"}}
		}, "import.field_aliases"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "sqlite" }, "invalid store driver"},
		{"postgres without host", func(c *Config) { c.Store.Postgres.Host = "" }, "store.postgres.host"},
		{"no upload size", func(c *Config) { c.Server.MaxUploadMB = 0 }, "server.max_upload_mb"},
	}

	require.NoError(t, validateConfig(validConfig()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "dash", Password: "p@ss", Name: "money", SSLMode: "require"}
	assert.Equal(t, "postgres://dash:p%40ss@db:5433/money?sslmode=require", p.DSN())

	p.Password = ""
	assert.Equal(t, "postgres://dash@db:5433/money?sslmode=require", p.DSN())

	p.URL = "postgres://override"
	assert.Equal(t, "postgres://override", p.DSN())
}

func TestNewLogger(t *testing.T) {
	config := validConfig()
	config.Log.Format = "json"
	logger := NewLogger(config)
	_, ok := logger.(*logging.LogrusAdapter)
	assert.True(t, ok)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FINDASH_TEST_ONLY=from-dotenv\n"), 0600))
	chdirForTest(t, dir)
	t.Setenv("FINDASH_TEST_ONLY", "")
	require.NoError(t, os.Unsetenv("FINDASH_TEST_ONLY"))

	loaded := LoadEnv(logging.NewMockLogger())
	assert.Equal(t, ".env", loaded)
	assert.Equal(t, "from-dotenv", os.Getenv("FINDASH_TEST_ONLY"))
}

func TestDefaults(t *testing.T) {
	t.Setenv("FINDASH_STORE_DRIVER", DriverMemory)

	config := Defaults()
	assert.Equal(t, DriverPostgres, config.Store.Driver)
	assert.Equal(t, ",", config.CSV.Delimiter)
	assert.NoError(t, validateConfig(config))
}

// chdirForTest changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
