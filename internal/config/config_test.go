package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: qr-test
  mode: production
server:
  port: 9090
database:
  driver: sqlite
  dsn: "file::memory:"
auth:
  secret: top-secret
scan:
  queue_size: 32
rate_limit:
  store: redis
  rules:
    redirect:
      limit: 5
      window: 10s
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "qr-test", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
	assert.Equal(t, 32, cfg.Scan.QueueSize)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 5*time.Second, cfg.Scan.WriteTimeout)
	assert.Equal(t, "redis", cfg.RateLimit.Store)
	assert.Equal(t, 10000, cfg.RateLimit.MaxKeys)
	assert.Equal(t, time.Minute, cfg.RateLimit.CleanupInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "http://localhost:3000", cfg.App.ShortLinkBaseURL)
}

func TestParseDerivesScanSecret(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	want, err := DeriveKey("top-secret", hkdfInfo)
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Scan.IPHashSecret)
	assert.Len(t, cfg.Scan.IPHashSecret, 64)
	assert.NotEqual(t, "top-secret", cfg.Scan.IPHashSecret)
}

func TestParseKeepsExplicitScanSecret(t *testing.T) {
	cfg, err := Parse(strings.NewReader("scan:\n  ip_hash_secret: pepper\n"))
	require.NoError(t, err)
	assert.Equal(t, "pepper", cfg.Scan.IPHashSecret)
}

func TestParseRequiresSomeSecret(t *testing.T) {
	_, err := Parse(strings.NewReader("app:\n  name: x\n"))
	assert.Error(t, err)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse(strings.NewReader("app: [unclosed"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QR_DATABASE_DSN", "postgres://qr@db/qr")
	t.Setenv("QR_AUTH_SECRET", "from-env")
	t.Setenv("QR_IP_HASH_SECRET", "env-pepper")
	t.Setenv("QR_SHORT_LINK_BASE_URL", "https://qr.example.com")
	t.Setenv("QR_REDIS_ADDR", "cache.internal:6380")

	cfg, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "postgres://qr@db/qr", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, "env-pepper", cfg.Scan.IPHashSecret)
	assert.Equal(t, "https://qr.example.com", cfg.App.ShortLinkBaseURL)
	assert.Equal(t, "cache.internal", cfg.Cache.Host)
	assert.Equal(t, 6380, cfg.Cache.Port)
}

func TestRuleFor(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, Rule{Limit: 5, Window: 10 * time.Second}, cfg.RuleFor("redirect"))
	assert.Equal(t, Rule{Limit: 20, Window: time.Minute}, cfg.RuleFor("analytics:export"))
	assert.Equal(t, Rule{Limit: 40, Window: time.Minute}, cfg.RuleFor("qr-codes:post"))
	assert.Equal(t, Rule{Limit: 60, Window: time.Minute}, cfg.RuleFor("qr-codes:delete"))
}

func TestRuleForIgnoresIncompleteRule(t *testing.T) {
	cfg := &Config{RateLimit: RateLimit{Rules: map[string]Rule{"redirect": {Limit: 0, Window: time.Second}}}}
	assert.Equal(t, Rule{Limit: 120, Window: time.Minute}, cfg.RuleFor("redirect"))
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	a, err := DeriveKey("master", "info-a")
	require.NoError(t, err)
	b, err := DeriveKey("master", "info-a")
	require.NoError(t, err)
	c, err := DeriveKey("master", "info-b")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qr-test", cfg.App.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
