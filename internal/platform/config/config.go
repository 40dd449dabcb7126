package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultListenAddr   = "127.0.0.1:7871"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultPactlBin     = "pactl"
	DefaultPactlTimeout = 2 * time.Second
	DefaultDebounce     = 80 * time.Millisecond
)

// Config holds the daemon settings after all layers are applied.
type Config struct {
	ListenAddr   string
	LogLevel     string
	LogFormat    string
	PactlBin     string
	PactlTimeout time.Duration
	Debounce     time.Duration
	IconAssetDir string
	IconAliases  map[string]string
}

type fileConfig struct {
	ListenAddr     string           `toml:"listen_addr"`
	LogLevel       string           `toml:"log_level"`
	LogFormat      string           `toml:"log_format"`
	PactlBin       string           `toml:"pactl_bin"`
	PactlTimeoutMS int              `toml:"pactl_timeout_ms"`
	DebounceMS     int              `toml:"debounce_ms"`
	Icons          fileIconsSection `toml:"icons"`
}

type fileIconsSection struct {
	AssetDir string            `toml:"asset_dir"`
	Aliases  map[string]string `toml:"aliases"`
}

// LoadEnv reads .env files and sets environment variables. If .env does not
// exist, LoadEnv returns an error but callers can ignore it and use system
// env or defaults. With no paths, ".env" is used.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// Load builds a Config from defaults, the TOML file at path (skipped when path
// is empty or missing) and the environment, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr:   DefaultListenAddr,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		PactlBin:     DefaultPactlBin,
		PactlTimeout: DefaultPactlTimeout,
		Debounce:     DefaultDebounce,
		IconAssetDir: defaultAssetDir(),
		IconAliases:  map[string]string{},
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var fc fileConfig
			if _, err := toml.DecodeFile(path, &fc); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", path, err)
			}
			applyFile(cfg, &fc)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyFile(cfg *Config, fc *fileConfig) {
	if fc.ListenAddr != "" {
		cfg.ListenAddr = fc.ListenAddr
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.PactlBin != "" {
		cfg.PactlBin = fc.PactlBin
	}
	if fc.PactlTimeoutMS > 0 {
		cfg.PactlTimeout = time.Duration(fc.PactlTimeoutMS) * time.Millisecond
	}
	if fc.DebounceMS > 0 {
		cfg.Debounce = time.Duration(fc.DebounceMS) * time.Millisecond
	}
	if fc.Icons.AssetDir != "" {
		cfg.IconAssetDir = fc.Icons.AssetDir
	}
	for k, v := range fc.Icons.Aliases {
		cfg.IconAliases[k] = v
	}
}

func applyEnv(cfg *Config) {
	cfg.ListenAddr = GetEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = GetEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.PactlBin = GetEnv("PACTL_BIN", cfg.PactlBin)
	cfg.IconAssetDir = GetEnv("ICON_ASSET_DIR", cfg.IconAssetDir)
	if ms := GetEnvInt("PACTL_TIMEOUT_MS", 0); ms > 0 {
		cfg.PactlTimeout = time.Duration(ms) * time.Millisecond
	}
	if ms := GetEnvInt("DEBOUNCE_MS", 0); ms > 0 {
		cfg.Debounce = time.Duration(ms) * time.Millisecond
	}
}

// FilePath returns the default config file location under XDG_CONFIG_HOME
// (or ~/.config), or "" when no home directory can be determined.
func FilePath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "appvolume", "config.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "appvolume", "config.toml")
	}
	return ""
}

func defaultAssetDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), "icons")
	}
	return "icons"
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}
