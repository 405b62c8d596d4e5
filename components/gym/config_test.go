package gym

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigMergesOverDefaults(t *testing.T) {
	cfg := DefaultConfig()
	doc := `
api:
  base_url: https://gym.example.com/api
  timeout: 5s
  rate_limit: 2.5
cache:
  ttl: 1m
forms:
  require_trainer: true
timezone: Asia/Kolkata
`
	require.NoError(t, DecodeConfig(strings.NewReader(doc), &cfg))
	assert.Equal(t, "https://gym.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2.5, cfg.API.RateLimit)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Forms.RequireTrainer)
	assert.Equal(t, DefaultExpiryWindowDays, cfg.Alerts.ExpiryWindowDays)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestDecodeConfigRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "api:\n  endpoint: x\n",
		"bad url":        "api:\n  base_url: ftp://gym\n",
		"bad duration":   "cache:\n  ttl: soon\n",
		"negative burst": "api:\n  burst: -1\n",
		"bad log level":  "log:\n  level: loud\n",
		"window too big": "alerts:\n  expiry_window_days: 1000\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			assert.Error(t, DecodeConfig(strings.NewReader(doc), &cfg))
		})
	}
}

func TestDecodeConfigEmptyDocument(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, DecodeConfig(strings.NewReader("  \n"), &cfg))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyEnvPrecedence(t *testing.T) {
	env := map[string]string{
		EnvLegacyAPIURL: "http://legacy",
		EnvToken:        "tok",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}

	cfg := DefaultConfig()
	ApplyEnv(&cfg, lookup)
	assert.Equal(t, "http://legacy", cfg.API.BaseURL)
	assert.Equal(t, "tok", cfg.API.Token)

	env[EnvAPIURL] = "http://primary"
	ApplyEnv(&cfg, lookup)
	assert.Equal(t, "http://primary", cfg.API.BaseURL)

	env[EnvAPIURL] = "   "
	cfg = DefaultConfig()
	ApplyEnv(&cfg, lookup)
	assert.Equal(t, "http://legacy", cfg.API.BaseURL)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gymdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: http://file\nlog:\n  format: json\n"), 0o600))
	t.Setenv(EnvAPIURL, "http://env")
	t.Setenv(EnvLegacyAPIURL, "")
	t.Setenv(EnvToken, "")
	t.Setenv(EnvTimezone, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env", cfg.API.BaseURL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, path, cfg.Source)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidateTimezone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Mars/Olympus"
	assert.Error(t, cfg.Validate())

	cfg.Timezone = "UTC"
	require.NoError(t, cfg.Validate())
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestConfigEncodeRoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://gym.example.com"

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	assert.Contains(t, buf.String(), "base_url: https://gym.example.com")

	decoded := DefaultConfig()
	require.NoError(t, DecodeConfig(&buf, &decoded))
	assert.Equal(t, cfg.API.BaseURL, decoded.API.BaseURL)
	assert.Equal(t, cfg.Cache.TTL, decoded.Cache.TTL)
}

func TestLoadDotEnvIgnoresMissingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GYMDESK_DOTENV_PROBE=from-file\n"), 0o600))
	t.Setenv("GYMDESK_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("GYMDESK_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("GYMDESK_DOTENV_PROBE"))
}
