package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  host: "127.0.0.1"
  port: 8081
  mode: "debug"
database:
  host: "db.internal"
  port: 5432
  user: "legal"
  password: "secret"
  db_name: "legalease_test"
redis:
  enabled: true
  addr: "cache.internal:6379"
kafka:
  enabled: true
  brokers: ["k1:9092", "k2:9092"]
  group_id: "workers"
minio:
  enabled: true
  endpoint: "minio.internal:9000"
  bucket: "uploads"
analysis:
  max_upload_size: 1048576
  cache_ttl: 2h
log:
  level: "debug"
  format: "console"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "legalease_test", cfg.Database.DBName)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "uploads", cfg.MinIO.Bucket)
	assert.Equal(t, int64(1048576), cfg.Analysis.MaxUploadSize)
	assert.Equal(t, 2*time.Hour, cfg.Analysis.CacheTTL)
	assert.Equal(t, "console", cfg.Log.Format)

	// defaults fill what the file leaves out
	assert.Equal(t, DefaultAllowedExtensions, cfg.Analysis.AllowedExtensions)
	assert.Equal(t, DefaultWorkerConcurrency, cfg.Worker.Concurrency)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server: ["))
	require.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(createTempConfigFile(t, "server:\n  mode: \"bogus\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, err.Error(), "server.mode")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LEGALEASE_SERVER_PORT", "9999")
	t.Setenv("LEGALEASE_DATABASE_HOST", "db-from-env")

	cfg, err := Load(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "db-from-env", cfg.Database.Host)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LEGALEASE_LOG_LEVEL", "warn")
	t.Setenv("LEGALEASE_SQLITE_PATH", "/tmp/history.db")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/history.db", cfg.SQLite.Path)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadOrEnv(t *testing.T) {
	cfg, err := LoadOrEnv("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)

	cfg, err = LoadOrEnv(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, "legalease_test", cfg.Database.DBName)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "missing.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

func TestWatch_InvokesCallbackOnChange(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	changed := make(chan *Config, 16)
	require.NoError(t, Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil))

	updated := validConfigYAML + "\nworker:\n  concurrency: 7\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			// A write can be observed half-way; wait for the final content.
			if cfg.Worker.Concurrency == 7 {
				return
			}
		case <-deadline:
			t.Skip("file watcher did not fire in time on this platform")
		}
	}
}
