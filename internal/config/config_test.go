package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadConfigFromDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(writeConfig(t, "app:\n  logLevel: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.App.DefaultFormat)
	assert.Equal(t, []string{"json", "text", "markdown"}, cfg.App.SupportedFormats)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, "substring", cfg.Taxonomy.MatchStrategy)
	assert.Equal(t, 500*time.Millisecond, cfg.Taxonomy.DebounceDelay)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "memory", cfg.History.Backend)
	assert.Equal(t, 50, cfg.History.MaxEntries)
	assert.Equal(t, "rolefit:", cfg.History.Redis.KeyPrefix)
	assert.Equal(t, uint32(3), cfg.History.CircuitBreaker.MinRequests)
	assert.InDelta(t, 0.6, cfg.History.CircuitBreaker.FailureThreshold, 1e-9)
	assert.True(t, cfg.Identity.AllowSignup)
	assert.Equal(t, "rolefit", cfg.Observability.ServiceName)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  logLevel: debug
  defaultFormat: markdown
server:
  port: "9090"
  apiKeys: [alpha, beta]
taxonomy:
  matchStrategy: word
history:
  backend: Redis
  maxEntries: 10
  redis:
    address: redis:6379
    keyPrefix: "test:"
`)

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, "markdown", cfg.App.DefaultFormat)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)
	assert.Equal(t, "word", cfg.Taxonomy.MatchStrategy)
	assert.Equal(t, "redis", cfg.History.Backend)
	assert.Equal(t, 10, cfg.History.MaxEntries)
	assert.Equal(t, "redis:6379", cfg.History.Redis.Address)
	assert.Equal(t, "test:", cfg.History.Redis.KeyPrefix)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ROLEFIT_SERVER_PORT", "7070")
	t.Setenv("ROLEFIT_SERVER_APIKEYS", "one, two")
	t.Setenv("ROLEFIT_HISTORY_MAXENTRIES", "5")

	cfg, err := LoadConfigFrom(writeConfig(t, "server:\n  port: \"8081\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, []string{"one", "two"}, cfg.Server.APIKeys)
	assert.Equal(t, 5, cfg.History.MaxEntries)
}

func TestLoadConfigFromErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		errorMsg string
	}{
		{"bad log level", "app:\n  logLevel: loud\n", "invalid log level"},
		{"unsupported default format", "app:\n  defaultFormat: xml\n", "invalid default format"},
		{"bad match strategy", "taxonomy:\n  matchStrategy: fuzzy\n", "invalid taxonomy match strategy"},
		{"watch without file", "taxonomy:\n  watch: true\n", "taxonomy.watch requires taxonomy.file"},
		{"bad history backend", "history:\n  backend: sqlite\n", "invalid backend"},
		{"bad breaker threshold", "history:\n  circuitBreaker:\n    failureThreshold: 1.5\n", "failureThreshold"},
		{"server tls without cert", "server:\n  tls:\n    mode: server\n", "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFrom(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestMatchStrategyAliases(t *testing.T) {
	for _, name := range []string{"substring", "word", "word-boundary", "WordBoundary", " word "} {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfigFrom(writeConfig(t, "taxonomy:\n  matchStrategy: \""+name+"\"\n"))
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Taxonomy.MatchStrategy)
		})
	}
}

func TestLoadConfigFromMissingFile(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestHistoryDisabledSkipsBackendChecks(t *testing.T) {
	cfg, err := LoadConfigFrom(writeConfig(t, "history:\n  enabled: false\n  backend: nowhere\n"))
	require.NoError(t, err)
	assert.False(t, cfg.History.Enabled)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList(" a,b ,, c "))
	assert.Nil(t, splitList(" , "))
}
