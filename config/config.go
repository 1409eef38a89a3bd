package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	appDir     = "THide"
	configFile = "config.yaml"
	logFile    = "thide.log"
)

type Config struct {
	PollIntervalMS      int    `yaml:"poll_interval_ms"`
	CacheRefreshSeconds int    `yaml:"cache_refresh_seconds"`
	ShellExecutable     string `yaml:"shell_executable"`
	LogLevel            string `yaml:"log_level"`
	LogFile             string `yaml:"log_file"`
}

func DefaultConfig() Config {
	return Config{
		PollIntervalMS:      100,
		CacheRefreshSeconds: 5,
		ShellExecutable:     "explorer.exe",
		LogLevel:            "info",
	}
}

// DefaultPath is %AppData%\THide\config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, appDir, configFile), nil
}

// DefaultLogPath is %LocalAppData%\THide\thide.log.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return logFile
	}
	return filepath.Join(dir, appDir, logFile)
}

// PollInterval is how often the hidden state is re-asserted.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// CacheRefresh is how long an enumeration of taskbar windows is reused.
func (c Config) CacheRefresh() time.Duration {
	return time.Duration(c.CacheRefreshSeconds) * time.Second
}

func (c Config) Validate() error {
	if c.PollIntervalMS < 10 || c.PollIntervalMS > 10000 {
		return fmt.Errorf("poll_interval_ms must be between 10 and 10000, got %d", c.PollIntervalMS)
	}
	if c.CacheRefreshSeconds < 0 || c.CacheRefreshSeconds > 300 {
		return fmt.Errorf("cache_refresh_seconds must be between 0 and 300, got %d", c.CacheRefreshSeconds)
	}
	if !strings.HasSuffix(c.ShellExecutable, ".exe") || len(c.ShellExecutable) == len(".exe") {
		return fmt.Errorf("shell_executable must name an .exe file, got %q", c.ShellExecutable)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level %q is not a valid level: %w", c.LogLevel, err)
	}
	return nil
}

// Load reads the config at path. A missing file is created with the
// defaults, which are then returned.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := write(path, cfg); err != nil {
			return Config{}, err
		}
		return finish(cfg), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.ShellExecutable = strings.ToLower(strings.TrimSpace(cfg.ShellExecutable))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return finish(cfg), nil
}

func finish(cfg Config) Config {
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogPath()
	}
	return cfg
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
