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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.Upstream.BaseURL)
	assert.Equal(t, 25, cfg.Upstream.RateLimits.Anonymous)
	assert.Equal(t, 50, cfg.Upstream.RateLimits.Keyed)
	assert.Equal(t, time.Minute, cfg.Upstream.RateLimits.Window)
	assert.Equal(t, 5*time.Minute, cfg.Cache.SnapshotTTL)
	assert.Equal(t, "medium", cfg.Allocation.DefaultRiskProfile)
	assert.Equal(t, 10, cfg.Allocation.MaxAssets)
	assert.Equal(t, 1.0, cfg.Allocation.TolerancePct)
}

func TestLoadRejectsBadProfile(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\nallocation:\n  default_risk_profile: yolo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default_risk_profile")
}

func TestLoadRejectsMaxAssetsOutOfRange(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\nallocation:\n  max_assets: 99\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_assets")
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\nkafka:\n  enabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brokers")
}

func TestRateLimitTieredByCredential(t *testing.T) {
	cfg, err := Load(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.RateLimit())

	cfg.Upstream.APIKey = "demo"
	assert.Equal(t, 50, cfg.RateLimit())
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "from-env")
	t.Setenv("MAX_ASSETS", "7")

	cfg, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Upstream.APIKey)
	assert.Equal(t, 7, cfg.Allocation.MaxAssets)
}
