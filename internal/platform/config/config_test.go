package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caltrack/internal/platform/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvNutritionURL, "")
	t.Setenv(config.EnvLogLevel, "")

	cfg, err := config.Load(config.Overrides{StateDir: dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, config.DefaultAPIBaseURL+"/nutrition", cfg.NutritionBaseURL)
	assert.Equal(t, filepath.Join(dir, "caltrack.db"), cfg.DBPath)
	assert.Equal(t, config.DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestLoadLayersFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	file := []byte("api_url: http://file.example/api/\nrequest_timeout: 3s\nsearch_debounce: 100ms\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), file, 0o644))
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvNutritionURL, "http://env.example/nutrition")
	t.Setenv(config.EnvLogLevel, "")

	cfg, err := config.Load(config.Overrides{StateDir: dir, LogLevel: "warn"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example/api", cfg.APIBaseURL)
	assert.Equal(t, "http://env.example/nutrition", cfg.NutritionBaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, "warn", cfg.Log.Level)

	cfg, err = config.Load(config.Overrides{StateDir: dir, APIBaseURL: "http://flag.example/api"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example/api", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFailsOnMissingExplicitFile(t *testing.T) {
	dir := t.TempDir()
	_, err := config.Load(config.Overrides{StateDir: dir, ConfigPath: filepath.Join(dir, "nope.yaml")}, nil)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()
	cfg := config.Default(t.TempDir())
	cfg.NutritionBaseURL = "http://x"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.RequestTimeout = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Log.Format = "xml"
	assert.Error(t, bad.Validate())
}

func TestSaveFileRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.APIBaseURL = "http://saved.example/api"
	path := filepath.Join(dir, "nested", "config.yaml")
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://saved.example/api", loaded.APIBaseURL)
	assert.Equal(t, cfg.RequestTimeout, loaded.RequestTimeout)
}
