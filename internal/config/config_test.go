package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/LegalEase-Intelligence/internal/config"
)

// validConfig returns a Config that passes Validate.
func validConfig() *config.Config {
	return config.Default()
}

func TestConfig_Validate_Defaults(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	cfg.Server.Port = 9090
	cfg.Analysis.AllowedExtensions = []string{".pdf"}
	config.ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{".pdf"}, cfg.Analysis.AllowedExtensions)
	assert.Equal(t, config.DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, []string{".pdf", ".docx"}, config.Default().Analysis.AllowedExtensions)
}

func TestApplyDefaults_Nil(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port zero", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *config.Config) { c.Server.Port = 65536 }, "server.port"},
		{"bad mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"no db host", func(c *config.Config) { c.Database.Host = "" }, "database.host"},
		{"no db user", func(c *config.Config) { c.Database.User = "" }, "database.user"},
		{"no db name", func(c *config.Config) { c.Database.DBName = "" }, "database.db_name"},
		{"no conns", func(c *config.Config) { c.Database.MaxConns = 0 }, "database.max_conns"},
		{"redis enabled no addr", func(c *config.Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }, "redis.addr"},
		{"kafka enabled no brokers", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "kafka.brokers"},
		{"kafka enabled no group", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.GroupID = "" }, "kafka.group_id"},
		{"opensearch enabled no addresses", func(c *config.Config) { c.OpenSearch.Enabled = true; c.OpenSearch.Addresses = nil }, "opensearch.addresses"},
		{"minio enabled no bucket", func(c *config.Config) { c.MinIO.Enabled = true; c.MinIO.Bucket = "" }, "minio.bucket"},
		{"worker concurrency", func(c *config.Config) { c.Worker.Concurrency = 0 }, "worker.concurrency"},
		{"upload size", func(c *config.Config) { c.Analysis.MaxUploadSize = 0 }, "analysis.max_upload_size"},
		{"extension without dot", func(c *config.Config) { c.Analysis.AllowedExtensions = []string{"pdf"} }, "analysis.allowed_extensions"},
		{"batch concurrency", func(c *config.Config) { c.Analysis.BatchConcurrency = 0 }, "analysis.batch_concurrency"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_DisabledBackendsSkipValidation(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Kafka.Brokers = nil
	cfg.OpenSearch.Addresses = nil
	cfg.MinIO.Bucket = ""
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0.0.0.0:8080", validConfig().Server.Addr())
}
