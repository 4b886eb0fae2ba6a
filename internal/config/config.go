package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings oxdash resolves once at startup.
type Config struct {
	APIURL         string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	StoragePath    string
	LogFile        string
}

// APIURLEnv overrides api_url from the config file when set.
const APIURLEnv = "OXPRINT_API_URL"

const (
	defaultConfigPath     = "~/.config/oxdash/config.toml"
	defaultAPIURL         = "http://localhost:8080"
	defaultPollInterval   = 30 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultStoragePath    = "~/.config/oxdash/storage.toml"
	defaultLogFile        = "~/.local/state/oxdash/oxdash.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
		StoragePath:    mustExpand(defaultStoragePath),
		LogFile:        mustExpand(defaultLogFile),
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing. The OXPRINT_API_URL environment variable wins over api_url.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		PollInterval   string `toml:"poll_interval"`
		RequestTimeout string `toml:"request_timeout"`
		StoragePath    string `toml:"storage_path"`
		LogFile        string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, defaultPollInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if v := strings.TrimSpace(raw.StoragePath); v != "" {
		cfg.StoragePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(APIURLEnv)); v != "" {
		cfg.APIURL = v
	}
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive, got %s", field, value)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
