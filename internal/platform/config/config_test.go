package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LISTEN_ADDR", "LOG_LEVEL", "LOG_FORMAT", "PACTL_BIN", "ICON_ASSET_DIR", "PACTL_TIMEOUT_MS", "DEBOUNCE_MS"} {
		t.Setenv(k, "")
	}
}

func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultPactlBin, cfg.PactlBin)
	assert.Equal(t, 80*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 2*time.Second, cfg.PactlTimeout)
	assert.Empty(t, cfg.IconAliases)
}

func TestLoad_missing_file_is_ignored(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
}

func TestLoad_file_then_env(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
listen_addr = "127.0.0.1:9000"
log_level = "debug"
debounce_ms = 120

[icons]
asset_dir = "/opt/icons"

[icons.aliases]
"spotify-launcher" = "spotify"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("PACTL_TIMEOUT_MS", "500")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.LogLevel, "environment overrides the file")
	assert.Equal(t, 120*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 500*time.Millisecond, cfg.PactlTimeout)
	assert.Equal(t, "/opt/icons", cfg.IconAssetDir)
	assert.Equal(t, "spotify", cfg.IconAliases["spotify-launcher"])
}

func TestLoad_malformed_file(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr = "), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetEnvInt_invalid_falls_back(t *testing.T) {
	t.Setenv("DEBOUNCE_MS", "soon")
	assert.Equal(t, 7, GetEnvInt("DEBOUNCE_MS", 7))
}

func TestFilePath_xdg(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/appvolume/config.toml", FilePath())
}
