package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults under the home directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Empty(t, cfg.DefaultWebhook)
		assert.Equal(t, filepath.Join(home, ".read_me_later.json"), cfg.UserConfigPath)
		assert.Equal(t, DefaultContainerConfigPath, cfg.ContainerConfigPath)
		assert.Equal(t, filepath.Join(home, ".read_me_later_rate_limit.json"), cfg.RateLimitFile)
		assert.Equal(t, filepath.Join(home, ".read_me_later", "stats.db"), cfg.StatsPath)
		assert.Equal(t, 10, cfg.RateLimitMax)
		assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
		assert.Equal(t, 10*time.Second, cfg.SendTimeout)
		assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
		assert.True(t, cfg.StatsEnabled)
	})

	t.Run("parses overrides and expands tilde", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("READ_ME_LATER_DEFAULT_WEBHOOK", "https://hooks.slack.com/services/T0/B0/abc")
		t.Setenv("READ_ME_LATER_RATE_LIMIT_FILE", "~/limits.json")
		t.Setenv("READ_ME_LATER_RATE_LIMIT_MAX", "3")
		t.Setenv("READ_ME_LATER_RATE_LIMIT_WINDOW", "5s")
		t.Setenv("READ_ME_LATER_STATS_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://hooks.slack.com/services/T0/B0/abc", cfg.DefaultWebhook)
		assert.Equal(t, filepath.Join(home, "limits.json"), cfg.RateLimitFile)
		assert.Equal(t, 3, cfg.RateLimitMax)
		assert.Equal(t, 5*time.Second, cfg.RateLimitWindow)
		assert.False(t, cfg.StatsEnabled)
	})

	t.Run("rejects a zero request budget", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("READ_ME_LATER_RATE_LIMIT_MAX", "0")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "READ_ME_LATER_RATE_LIMIT_MAX")
	})
}

func TestDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".read_me_later.json"), cfg.UserConfigPath)
	assert.Equal(t, 10, cfg.RateLimitMax)
}
