package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFile_DefaultsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("api:\n  base_url: http://wms.local/api/\ndrafts:\n  idle_ttl: 5m\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.Equal(t, "http://wms.local/api", cfg.API.BaseURL)
	require.Equal(t, 5*time.Minute, cfg.Drafts.IdleTTL)
	require.Equal(t, 24*time.Hour, cfg.Drafts.HistoryRetention)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "120-M", cfg.RateLimit.Rate)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "localhost:6380", cfg.Redis.Addr())
	require.False(t, cfg.Cache.Enabled)
}

func TestLoadFile_RequiresBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))
	t.Setenv("WMS_API_BASE_URL", "")

	_, err := LoadFile(path)
	require.ErrorContains(t, err, "api.base_url is required")
}
