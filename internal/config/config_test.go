package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Run from a temp dir so no stray pinncheck.yaml is picked up.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5173", cfg.Target.URL)
	assert.Equal(t, "Welcome to Pinn", cfg.Target.ProbeText)
	assert.Equal(t, 2*time.Second, cfg.Target.SettleDelay)

	assert.Equal(t, "verification", cfg.Artifacts.Dir)
	assert.Equal(t, "initial_load.png", cfg.Artifacts.Screenshot)
	assert.False(t, cfg.Artifacts.SaveDOM)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 60*time.Second, cfg.Browser.RunTimeout)
	assert.Equal(t, 4, cfg.Browser.MaxSessions)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pinncheck.yaml")
	content := `
target:
  url: http://localhost:3000
  probeText: Hello
  settleDelay: 500ms
browser:
  headless: false
  maxSessions: 2
history:
  enabled: true
  dir: /tmp/pinncheck-history
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Target.URL)
	assert.Equal(t, "Hello", cfg.Target.ProbeText)
	assert.Equal(t, 500*time.Millisecond, cfg.Target.SettleDelay)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 2, cfg.Browser.MaxSessions)
	assert.True(t, cfg.History.Enabled)

	// Untouched keys keep their defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "initial_load.png", cfg.Artifacts.Screenshot)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
