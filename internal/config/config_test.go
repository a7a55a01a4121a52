package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mauv0809/financial-explorer/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "FMP_API_KEY", "FMP_BASE_URL", "FMP_LIMIT",
		"FINNHUB_API_KEY", "FINNHUB_BASE_URL", "HTTP_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ingest.DefaultStatementBaseURL, cfg.Statements.BaseURL)
	assert.Equal(t, ingest.DefaultStatementLimit, cfg.Statements.Limit)
	assert.Equal(t, ingest.DefaultMetricsBaseURL, cfg.Metrics.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, []string{"FMP_API_KEY", "FINNHUB_API_KEY"}, cfg.MissingCredentials())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "explorer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = "9000"
log_level = "debug"
timeout_seconds = 5

[statements]
base_url = "http://statements.local"
api_key = "from-file"
limit = 4

[metrics]
base_url = "http://metrics.local"
`), 0o644))

	t.Setenv("FMP_API_KEY", "from-env")
	t.Setenv("FINNHUB_API_KEY", "metrics-key")
	t.Setenv("FMP_LIMIT", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "http://statements.local", cfg.Statements.BaseURL)
	assert.Equal(t, "from-env", cfg.Statements.APIKey)
	assert.Equal(t, 7, cfg.Statements.Limit)
	assert.Equal(t, "http://metrics.local", cfg.Metrics.BaseURL)
	assert.Equal(t, "metrics-key", cfg.Metrics.APIKey)
	assert.Empty(t, cfg.MissingCredentials())
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT_SECONDS", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "explorer.toml")
	require.NoError(t, os.WriteFile(path, []byte(`port = `), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
