package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Timeline engine configuration
	Timeline TimelineConfig `yaml:"timeline" json:"timeline"`

	// Asset registry configuration
	Assets AssetConfig `yaml:"assets" json:"assets"`

	// Preview hub configuration
	Preview PreviewConfig `yaml:"preview" json:"preview"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string        `yaml:"host" json:"host" env:"CLIPSTACK_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" json:"port" env:"CLIPSTACK_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout" env:"CLIPSTACK_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout" env:"CLIPSTACK_WRITE_TIMEOUT" default:"30s"`
	EnableCORS   bool          `yaml:"enable_cors" json:"enable_cors" env:"CLIPSTACK_ENABLE_CORS" default:"true"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Type         string `yaml:"type" json:"type" env:"DATABASE_TYPE" default:"sqlite"`
	DataDir      string `yaml:"data_dir" json:"data_dir" env:"CLIPSTACK_DATA_DIR" default:"./clipstack-data"`
	DatabasePath string `yaml:"database_path" json:"database_path" env:"CLIPSTACK_DATABASE_PATH"`
	Host         string `yaml:"host" json:"host" env:"POSTGRES_HOST" default:"localhost"`
	Port         int    `yaml:"port" json:"port" env:"POSTGRES_PORT" default:"5432"`
	Username     string `yaml:"username" json:"username" env:"POSTGRES_USER" default:"clipstack"`
	Password     string `yaml:"password" json:"-" env:"POSTGRES_PASSWORD"`
	Database     string `yaml:"database" json:"database" env:"POSTGRES_DB" default:"clipstack"`
	LogQueries   bool   `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES" default:"false"`
}

// TimelineConfig holds timeline interaction defaults.
// PixelsPerSecond and TimeScale come from the host UI contract; the rest are
// engine tolerances.
type TimelineConfig struct {
	TimeScale           int32   `yaml:"time_scale" json:"time_scale" env:"CLIPSTACK_TIME_SCALE" default:"600"`
	PixelsPerSecond     float64 `yaml:"pixels_per_second" json:"pixels_per_second" env:"CLIPSTACK_PIXELS_PER_SECOND" default:"50"`
	SnapToleranceSec    float64 `yaml:"snap_tolerance_sec" json:"snap_tolerance_sec" env:"CLIPSTACK_SNAP_TOLERANCE" default:"0.15"`
	SnapGridIntervalSec float64 `yaml:"snap_grid_interval_sec" json:"snap_grid_interval_sec" env:"CLIPSTACK_SNAP_GRID_INTERVAL" default:"1.0"`
}

// AssetConfig holds asset registry configuration
type AssetConfig struct {
	WatchDir            string  `yaml:"watch_dir" json:"watch_dir" env:"CLIPSTACK_ASSET_DIR"`
	WatchEnabled        bool    `yaml:"watch_enabled" json:"watch_enabled" env:"CLIPSTACK_ASSET_WATCH" default:"true"`
	SecondsPerThumbnail float64 `yaml:"seconds_per_thumbnail" json:"seconds_per_thumbnail" env:"CLIPSTACK_SECONDS_PER_THUMBNAIL" default:"1.5"`
}

// PreviewConfig holds preview hub configuration
type PreviewConfig struct {
	DebounceInterval time.Duration `yaml:"debounce_interval" json:"debounce_interval" env:"CLIPSTACK_PREVIEW_DEBOUNCE" default:"150ms"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT" default:"text"`
}

// ConfigWatcher is called after the global configuration is replaced
type ConfigWatcher func(oldConfig, newConfig *Config)

var (
	globalConfig *Config
	watchers     []ConfigWatcher
	configMu     sync.RWMutex
)

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			EnableCORS:   true,
		},
		Database: DatabaseConfig{
			Type:     "sqlite",
			DataDir:  "./clipstack-data",
			Host:     "localhost",
			Port:     5432,
			Username: "clipstack",
			Database: "clipstack",
		},
		Timeline: TimelineConfig{
			TimeScale:           600,
			PixelsPerSecond:     50,
			SnapToleranceSec:    0.15,
			SnapGridIntervalSec: 1.0,
		},
		Assets: AssetConfig{
			WatchEnabled:        true,
			SecondsPerThumbnail: 1.5,
		},
		Preview: PreviewConfig{
			DebounceInterval: 150 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the given yaml file (optional) and applies
// environment variable overrides. The result becomes the global configuration.
func Load(path string) error {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(reflect.ValueOf(cfg).Elem())

	configMu.Lock()
	old := globalConfig
	if old == nil {
		old = DefaultConfig()
	}
	globalConfig = cfg
	notify := make([]ConfigWatcher, len(watchers))
	copy(notify, watchers)
	configMu.Unlock()

	for _, watcher := range notify {
		go watcher(old, cfg)
	}
	return nil
}

// AddWatcher registers a callback invoked on every configuration (re)load
func AddWatcher(watcher ConfigWatcher) {
	configMu.Lock()
	defer configMu.Unlock()
	watchers = append(watchers, watcher)
}

// Get returns the global configuration, loading defaults if Load was never called
func Get() *Config {
	configMu.RLock()
	cfg := globalConfig
	configMu.RUnlock()

	if cfg != nil {
		return cfg
	}

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig == nil {
		globalConfig = DefaultConfig()
		applyEnvOverrides(reflect.ValueOf(globalConfig).Elem())
	}
	return globalConfig
}

// Set replaces the global configuration (used by tests and hot reload)
func Set(cfg *Config) {
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
}

// applyEnvOverrides walks the config struct and applies values from the
// environment variables named in `env` tags.
func applyEnvOverrides(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Duration(0)) {
			applyEnvOverrides(field)
			continue
		}

		envName := t.Field(i).Tag.Get("env")
		if envName == "" {
			continue
		}
		raw, ok := os.LookupEnv(envName)
		if !ok || raw == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Bool:
			if b, err := strconv.ParseBool(raw); err == nil {
				field.SetBool(b)
			}
		case reflect.Float64:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				field.SetFloat(f)
			}
		case reflect.Int, reflect.Int32, reflect.Int64:
			if field.Type() == reflect.TypeOf(time.Duration(0)) {
				if d, err := time.ParseDuration(raw); err == nil {
					field.SetInt(int64(d))
				}
				continue
			}
			if n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
				field.SetInt(n)
			}
		}
	}
}
