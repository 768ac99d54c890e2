package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarkerFile is the per-project configuration file name searched for
// in ancestor directories.
const MarkerFile = ".prdigest.yaml"

// Pipeline modes: generate an analysis report, or dump the raw prompt
// and record for an external analysis step.
const (
	ModeReport = "report"
	ModePrompt = "prompt"
)

// Config is the prdigest configuration.
type Config struct {
	MaxFiles        int      `yaml:"max_files"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	Concurrency     int      `yaml:"concurrency"`
	Mode            string   `yaml:"mode"`
	Format          string   `yaml:"format"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
	RetryAttempts   int      `yaml:"retry_attempts"`
	LogLevel        string   `yaml:"log_level"`
}

// Default returns a Config with all defaults applied. MaxFiles zero
// means no truncation.
func Default() Config {
	return Config{
		MaxFiles:        0,
		ExcludePatterns: nil,
		Concurrency:     10,
		Mode:            ModeReport,
		Format:          "markdown",
		TimeoutSeconds:  30,
		RetryAttempts:   3,
		LogLevel:        "info",
	}
}

// FindFile walks from dir upward to the filesystem root looking for
// the marker file. Returns "" if none is found.
func FindFile(dir string) string {
	dir = filepath.Clean(dir)
	for {
		path := filepath.Join(dir, MarkerFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// UserConfigPath returns the platform-appropriate fallback config path.
func UserConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prdigest", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "prdigest", "config.yaml"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "prdigest", "config.yaml"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "prdigest", "config.yaml"), nil
	default:
		return filepath.Join(home, ".config", "prdigest", "config.yaml"), nil
	}
}

// LoadFile reads config from path. A missing file yields a zero Config
// and nil error.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config for a run started in startDir by
// merging: defaults <- marker file (nearest ancestor, else the user
// fallback path) <- env <- overrides. The result is validated.
func Load(startDir string, overrides map[string]string) (Config, error) {
	cfg := Default()

	path := FindFile(startDir)
	if path == "" {
		if userPath, err := UserConfigPath(); err == nil {
			path = userPath
		}
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		mergeFile(&cfg, fileCfg)
	}

	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration before the pipeline runs. Pattern
// compilation happens here so the filter engine never sees a malformed
// pattern.
func Validate(cfg Config) error {
	if cfg.MaxFiles < 0 {
		return fmt.Errorf("max_files must not be negative, got %d", cfg.MaxFiles)
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", cfg.Concurrency)
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Mode != ModeReport && cfg.Mode != ModePrompt {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeReport, ModePrompt, cfg.Mode)
	}
	if cfg.Format != "markdown" && cfg.Format != "json" {
		return fmt.Errorf("format must be markdown or json, got %q", cfg.Format)
	}
	for _, p := range cfg.ExcludePatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
	}
	return nil
}

func mergeFile(dst *Config, src Config) {
	if src.MaxFiles > 0 {
		dst.MaxFiles = src.MaxFiles
	}
	if len(src.ExcludePatterns) > 0 {
		dst.ExcludePatterns = src.ExcludePatterns
	}
	if src.Concurrency > 0 {
		dst.Concurrency = src.Concurrency
	}
	if src.Mode != "" {
		dst.Mode = src.Mode
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.TimeoutSeconds > 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
	if src.RetryAttempts > 0 {
		dst.RetryAttempts = src.RetryAttempts
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("PRDIGEST_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFiles = n
		}
	}
	if v := os.Getenv("PRDIGEST_EXCLUDE"); v != "" {
		cfg.ExcludePatterns = splitPatterns(v)
	}
	if v := os.Getenv("PRDIGEST_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v := os.Getenv("PRDIGEST_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("PRDIGEST_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PRDIGEST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["maxFiles"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFiles = n
		}
	}
	if v, ok := overrides["exclude"]; ok && v != "" {
		cfg.ExcludePatterns = splitPatterns(v)
	}
	if v, ok := overrides["concurrency"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v, ok := overrides["mode"]; ok && v != "" {
		cfg.Mode = v
	}
	if v, ok := overrides["format"]; ok && v != "" {
		cfg.Format = v
	}
	if v, ok := overrides["timeout"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetField sets a single config field by key name. Returns an error if
// the key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "max_files":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_files must be an integer: %w", err)
		}
		cfg.MaxFiles = n
	case "exclude_patterns":
		cfg.ExcludePatterns = splitPatterns(value)
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		cfg.Concurrency = n
	case "mode":
		cfg.Mode = value
	case "format":
		cfg.Format = value
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeout_seconds must be an integer: %w", err)
		}
		cfg.TimeoutSeconds = n
	case "retry_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("retry_attempts must be an integer: %w", err)
		}
		cfg.RetryAttempts = n
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
