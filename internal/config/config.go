// ABOUTME: levelup configuration: identity, cache backend and service settings.
// ABOUTME: JSON file under XDG config, overridden by LEVELUP_* environment variables.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/levelup/internal/localcache"
	"github.com/harperreed/levelup/internal/realtime"
	"github.com/harperreed/levelup/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LEVELUP_USER_ID.
const EnvPrefix = "LEVELUP"

// Config stores levelup configuration.
type Config struct {
	// UserID and DisplayName identify the signed-in user.
	UserID      string `json:"user_id,omitempty" mapstructure:"user_id"`
	DisplayName string `json:"display_name,omitempty" mapstructure:"display_name"`

	// CacheBackend selects the device cache: "charm" (default, synced) or
	// "badger" (local only).
	CacheBackend string `json:"cache_backend,omitempty" mapstructure:"cache_backend"`
	CharmHost    string `json:"charm_host,omitempty" mapstructure:"charm_host"`

	// DataDir is the root directory for levelup.db and the badger cache.
	// Supports ~ expansion. Defaults to ~/.local/share/levelup.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// DayBoundary decides when a new day starts: "local" (default) or "utc".
	DayBoundary string `json:"day_boundary,omitempty" mapstructure:"day_boundary"`

	// Realtime selects chat delivery: "memory" (default) or "redis".
	Realtime  string `json:"realtime,omitempty" mapstructure:"realtime"`
	RedisAddr string `json:"redis_addr,omitempty" mapstructure:"redis_addr"`

	WeatherLat float64 `json:"weather_lat,omitempty" mapstructure:"weather_lat"`
	WeatherLon float64 `json:"weather_lon,omitempty" mapstructure:"weather_lon"`

	HTTPAddr string `json:"http_addr,omitempty" mapstructure:"http_addr"`
	// CORSOrigins is a comma-separated list of browser origins allowed to
	// call the HTTP API.
	CORSOrigins string `json:"cors_origins,omitempty" mapstructure:"cors_origins"`

	// Debounce delays as Go durations, e.g. "1.5s".
	BioDebounce    string `json:"bio_debounce,omitempty" mapstructure:"bio_debounce"`
	MacrosDebounce string `json:"macros_debounce,omitempty" mapstructure:"macros_debounce"`
}

var keys = []string{
	"user_id", "display_name", "cache_backend", "charm_host", "data_dir",
	"day_boundary", "realtime", "redis_addr", "http_addr", "cors_origins",
	"bio_debounce", "macros_debounce",
}

// GetCacheBackend returns the configured cache backend, defaulting to "charm".
func (c *Config) GetCacheBackend() string {
	if c.CacheBackend == "" {
		return "charm"
	}
	return c.CacheBackend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetDBPath returns the SQLite database path.
func (c *Config) GetDBPath() string {
	return filepath.Join(c.GetDataDir(), "levelup.db")
}

// GetLocation returns where calendar days start.
func (c *Config) GetLocation() (*time.Location, error) {
	switch strings.ToLower(c.DayBoundary) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	default:
		return nil, fmt.Errorf("unknown day_boundary: %q (use local or utc)", c.DayBoundary)
	}
}

// GetRealtime returns the realtime transport, defaulting to "memory".
func (c *Config) GetRealtime() string {
	if c.Realtime == "" {
		return "memory"
	}
	return c.Realtime
}

// GetRedisAddr returns the Redis address, defaulting to localhost.
func (c *Config) GetRedisAddr() string {
	if c.RedisAddr == "" {
		return "localhost:6379"
	}
	return c.RedisAddr
}

// GetHTTPAddr returns the API listen address.
func (c *Config) GetHTTPAddr() string {
	if c.HTTPAddr == "" {
		return "127.0.0.1:8080"
	}
	return c.HTTPAddr
}

// GetCORSOrigins returns the allowed API origins.
func (c *Config) GetCORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// GetBioDebounce returns the bio write delay, or 0 to use the default.
func (c *Config) GetBioDebounce() time.Duration {
	return parseDuration(c.BioDebounce)
}

// GetMacrosDebounce returns the macros write delay, or 0 to use the default.
func (c *Config) GetMacrosDebounce() time.Duration {
	return parseDuration(c.MacrosDebounce)
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// HasWeather reports whether weather coordinates are configured.
func (c *Config) HasWeather() bool {
	return c.WeatherLat != 0 || c.WeatherLon != 0
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite store in the data directory.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.GetDBPath())
}

// OpenCache opens the configured local cache backend.
func (c *Config) OpenCache() (localcache.Backend, error) {
	switch c.GetCacheBackend() {
	case "charm":
		return localcache.OpenCharm("levelup", c.CharmHost)
	case "badger":
		return localcache.OpenBadger(filepath.Join(c.GetDataDir(), "cache"))
	default:
		return nil, fmt.Errorf("unknown cache_backend: %q", c.CacheBackend)
	}
}

// OpenRealtime opens the configured realtime channel.
func (c *Config) OpenRealtime(ctx context.Context) (realtime.Channel, error) {
	switch c.GetRealtime() {
	case "memory":
		return realtime.NewBroker(), nil
	case "redis":
		return realtime.NewRedisChannel(ctx, c.GetRedisAddr(), "")
	default:
		return nil, fmt.Errorf("unknown realtime: %q", c.Realtime)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "levelup", "config.json")
}

// Load reads config from disk and applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	for _, k := range keys {
		v.SetDefault(k, "")
	}
	v.SetDefault("weather_lat", 0.0)
	v.SetDefault("weather_lon", 0.0)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
