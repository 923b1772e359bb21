package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backend names accepted by StoreConfig.Backend.
const (
	StoreBackendSQLite  = "sqlite"
	StoreBackendKeyring = "keyring"
	StoreBackendMemory  = "memory"
)

// envPrefix namespaces environment overrides, e.g. ACTIVITYSYNC_VIEWER_IDENTITY.
const envPrefix = "ACTIVITYSYNC"

// ViewerConfig identifies the viewer this client syncs for.
type ViewerConfig struct {
	Identity string `mapstructure:"identity" yaml:"identity"`
}

// SurfaceConfig holds the event titles the active surface reacts to.
type SurfaceConfig struct {
	// Name is informational ("participant", "leader", ...).
	Name string `mapstructure:"name" yaml:"name"`

	// Titles is the set of push event titles that trigger a refresh.
	Titles []string `mapstructure:"titles" yaml:"titles"`
}

// ProviderConfig holds the REST data provider settings.
type ProviderConfig struct {
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	Token             string `mapstructure:"token" yaml:"token"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	TimeoutSec        int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// PushConfig holds the push channel settings.
type PushConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// StoreConfig selects the durable device store.
type StoreConfig struct {
	// Backend is one of StoreBackendSQLite, StoreBackendKeyring or
	// StoreBackendMemory.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file used by the sqlite backend.
	Path string `mapstructure:"path" yaml:"path"`
}

// ResyncConfig controls the safety-net resync schedule. An empty Cron
// disables it.
type ResyncConfig struct {
	Cron string `mapstructure:"cron" yaml:"cron"`
}

// HTTPConfig controls the local state/metrics HTTP surface. An empty
// Listen disables it.
type HTTPConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Viewer   ViewerConfig   `mapstructure:"viewer" yaml:"viewer"`
	Surface  SurfaceConfig  `mapstructure:"surface" yaml:"surface"`
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Push     PushConfig     `mapstructure:"push" yaml:"push"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Resync   ResyncConfig   `mapstructure:"resync" yaml:"resync"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/activitysync/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "activitysync", "config.yaml")
}

// defaultStorePath returns the default SQLite database location next to
// the configuration file.
func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "activitysync.db")
	}
	return filepath.Join(home, ".config", "activitysync", "state.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Surface: SurfaceConfig{
			Name:   "participant",
			Titles: []string{"Activity join"},
		},
		Provider: ProviderConfig{
			RequestsPerMinute: 120,
			TimeoutSec:        30,
		},
		Store: StoreConfig{
			Backend: StoreBackendSQLite,
			Path:    defaultStorePath(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// setDefaults registers defaults so missing keys resolve to sensible values.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("viewer.identity", d.Viewer.Identity)
	v.SetDefault("surface.name", d.Surface.Name)
	v.SetDefault("surface.titles", d.Surface.Titles)
	v.SetDefault("provider.base_url", d.Provider.BaseURL)
	v.SetDefault("provider.token", d.Provider.Token)
	v.SetDefault("provider.requests_per_minute", d.Provider.RequestsPerMinute)
	v.SetDefault("provider.timeout_sec", d.Provider.TimeoutSec)
	v.SetDefault("push.url", d.Push.URL)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("resync.cron", d.Resync.Cron)
	v.SetDefault("http.listen", d.HTTP.Listen)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory is loaded first; it never overrides
// variables already set in the environment. ACTIVITYSYNC_* variables
// override file values. A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that have no usable default.
func (c *AppConfig) Validate() error {
	switch c.Store.Backend {
	case StoreBackendSQLite, StoreBackendKeyring, StoreBackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Provider.RequestsPerMinute < 0 {
		return fmt.Errorf("provider.requests_per_minute must not be negative")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("viewer", cfg.Viewer)
	v.Set("surface", cfg.Surface)
	v.Set("provider", cfg.Provider)
	v.Set("push", cfg.Push)
	v.Set("store", cfg.Store)
	v.Set("resync", cfg.Resync)
	v.Set("http", cfg.HTTP)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
