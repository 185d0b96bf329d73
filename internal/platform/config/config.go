package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDirName     = "caltrack"
	dbFileName     = "caltrack.db"
	configFileName = "config.yaml"
	logFileName    = "caltrack.log"

	DefaultAPIBaseURL     = "http://localhost:8080/api"
	DefaultRequestTimeout = 15 * time.Second
	DefaultSearchDebounce = 250 * time.Millisecond
)

const (
	EnvAPIURL       = "CALTRACK_API_URL"
	EnvNutritionURL = "CALTRACK_NUTRITION_URL"
	EnvLogLevel     = "CALTRACK_LOG_LEVEL"
)

type Config struct {
	StateDir         string        `yaml:"-"`
	DBPath           string        `yaml:"-"`
	APIBaseURL       string        `yaml:"api_url"`
	NutritionBaseURL string        `yaml:"nutrition_url"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	SearchDebounce   time.Duration `yaml:"search_debounce"`
	Log              LogConfig     `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Overrides carries values set explicitly on the command line.
type Overrides struct {
	StateDir   string
	ConfigPath string
	APIBaseURL string
	LogLevel   string
}

// Default returns the built-in configuration rooted at stateDir.
func Default(stateDir string) Config {
	return Config{
		StateDir:       stateDir,
		DBPath:         filepath.Join(stateDir, dbFileName),
		APIBaseURL:     DefaultAPIBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		SearchDebounce: DefaultSearchDebounce,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(stateDir, logFileName),
		},
	}
}

// FilePath is where the config file lives unless --config names another.
func (c Config) FilePath() string {
	return filepath.Join(c.StateDir, configFileName)
}

// DefaultStateDir resolves the per-user directory holding the database,
// config file and log.
func DefaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// Load applies, in order: defaults, the YAML file, environment variables and
// command-line overrides.
func Load(o Overrides, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	stateDir := strings.TrimSpace(o.StateDir)
	if stateDir == "" {
		dir, err := DefaultStateDir()
		if err != nil {
			return Config{}, err
		}
		stateDir = dir
	}
	cfg := Default(stateDir)

	path := strings.TrimSpace(o.ConfigPath)
	explicit := path != ""
	if !explicit {
		path = cfg.FilePath()
	}
	fileCfg, err := LoadFile(path)
	switch {
	case err == nil:
		logger.Debug("loaded config file", slog.String("path", path))
		cfg.Merge(fileCfg)
	case os.IsNotExist(err) && !explicit:
		logger.Debug("no config file", slog.String("path", path))
	default:
		return Config{}, err
	}

	cfg.applyEnv(os.Getenv)
	if v := strings.TrimSpace(o.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(o.LogLevel); v != "" {
		cfg.Log.Level = v
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.NutritionBaseURL == "" {
		cfg.NutritionBaseURL = cfg.APIBaseURL + "/nutrition"
	}
	cfg.NutritionBaseURL = strings.TrimRight(cfg.NutritionBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes a YAML config file. Missing files surface as
// os.IsNotExist errors.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveFile writes the file-backed fields of c as YAML.
func (c Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Merge overlays the non-zero fields of other onto c.
func (c *Config) Merge(other Config) {
	if other.APIBaseURL != "" {
		c.APIBaseURL = other.APIBaseURL
	}
	if other.NutritionBaseURL != "" {
		c.NutritionBaseURL = other.NutritionBaseURL
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
	if other.SearchDebounce != 0 {
		c.SearchDebounce = other.SearchDebounce
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}
	if other.Log.File != "" {
		c.Log.File = other.Log.File
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIURL)); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvNutritionURL)); v != "" {
		c.NutritionBaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.StateDir) == "" {
		return fmt.Errorf("state dir is required")
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api url is required")
	}
	if strings.TrimSpace(c.NutritionBaseURL) == "" {
		return fmt.Errorf("nutrition url is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be > 0")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search debounce must be >= 0")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}
