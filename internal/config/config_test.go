// File: internal/config/config_test.go
package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Session.WaitTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Session.PollInterval)
	assert.True(t, cfg.Session.VisibleTextOnly)
	assert.True(t, cfg.Session.Reloadable)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(newViper(t, `
session:
  wait_timeout: 5s
  poll_interval: 100ms
  reloadable: false
browser:
  headless: false
  window_width: 800
  window_height: 600
`))
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Session.WaitTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Session.PollInterval)
	assert.False(t, cfg.Session.Reloadable)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 800, cfg.Browser.WindowWidth)
}

func TestValidateRejectsBadWaitPolicy(t *testing.T) {
	_, err := Load(newViper(t, "session:\n  wait_timeout: -1s\n"))
	require.Error(t, err)

	_, err = Load(newViper(t, "session:\n  wait_timeout: 10ms\n  poll_interval: 1s\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")
}

func TestValidateRejectsBadBrowserTimeouts(t *testing.T) {
	_, err := Load(newViper(t, "browser:\n  action_timeout: 0s\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser timeouts")
}
