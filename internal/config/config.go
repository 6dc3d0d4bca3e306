package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/leaselock/leaselock/internal/observability"
	"github.com/leaselock/leaselock/internal/store"
	"github.com/spf13/viper"
)

// ConfigLoader reads the application configuration and keeps it current
// while the process runs, reloading on file changes.
type ConfigLoader struct {
	v             *viper.Viper
	mu            sync.RWMutex
	watchers      []func(interface{})
	currentConfig interface{}
}

// ConfigLoadFn decodes a backend-specific store configuration from viper.
type ConfigLoadFn[T store.StoreConfig] func(*viper.Viper) (T, error)

// GlobalConfig is the complete application configuration.
type GlobalConfig[T store.StoreConfig] struct {
	Store         T                          `yaml:"-"`
	Backend       BackendConfig              `yaml:"backend" mapstructure:"backend"`
	Observability observability.Config       `yaml:"observability" mapstructure:"observability"`
	Logger        observability.LoggerConfig `yaml:"logger" mapstructure:"logger"`
}

// BackendConfig selects which store backend the process uses.
type BackendConfig struct {
	Type string `yaml:"type" mapstructure:"type"`
}

// NewConfigLoader creates a loader rooted at configPath. Environment
// variables prefixed with LEASELOCK override file values, with dots in
// keys replaced by underscores (LEASELOCK_REDISCONFIG_HOST for
// redisConfig.host).
func NewConfigLoader(configPath string) *ConfigLoader {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEASELOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigLoader{
		v:        v,
		watchers: make([]func(interface{}), 0),
	}
}

// AddWatcher registers a callback invoked with the new configuration
// after each successful reload.
func (cl *ConfigLoader) AddWatcher(callback func(interface{})) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.watchers = append(cl.watchers, callback)
}

// GetCurrentConfig returns the most recently loaded configuration.
func (cl *ConfigLoader) GetCurrentConfig() interface{} {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.currentConfig
}

func (cl *ConfigLoader) notifyWatchers(newConfig interface{}) {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	for _, watcher := range cl.watchers {
		watcher(newConfig)
	}
}

// LoadConfig loads the application configuration from configPath using
// loadFn for the store section, and starts watching the file for changes.
// A missing config file is not an error; defaults and environment
// variables apply.
func LoadConfig[T store.StoreConfig](configPath string, loadFn ConfigLoadFn[T]) (*ConfigLoader, *GlobalConfig[T], error) {
	cl := NewConfigLoader(configPath)

	setDefaults(cl.v)

	if err := cl.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config, err := loadConfiguration(cl.v, loadFn)
	if err != nil {
		return nil, nil, err
	}

	cl.mu.Lock()
	cl.currentConfig = config
	cl.mu.Unlock()

	cl.v.WatchConfig()
	cl.v.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := loadConfiguration(cl.v, loadFn)
		if err != nil {
			fmt.Printf("Error reloading configuration from %s: %v\n", e.Name, err)
			return
		}

		cl.mu.Lock()
		cl.currentConfig = newConfig
		cl.mu.Unlock()

		cl.notifyWatchers(newConfig)
	})

	return cl, config, nil
}

func loadConfiguration[T store.StoreConfig](v *viper.Viper, loadFn ConfigLoadFn[T]) (*GlobalConfig[T], error) {
	storeConfig, err := loadFn(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load store config: %w", err)
	}

	config := &GlobalConfig[T]{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode global config: %w", err)
	}

	config.Store = storeConfig

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func validateConfig[T store.StoreConfig](cfg *GlobalConfig[T]) error {
	if err := cfg.Store.Validate(); err != nil {
		return fmt.Errorf("store configuration error: %w", err)
	}

	if cfg.Observability.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if cfg.Observability.ServiceVersion == "" {
		return fmt.Errorf("service version is required")
	}
	if cfg.Observability.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if cfg.Observability.OTelEndpoint == "" {
		return fmt.Errorf("OpenTelemetry endpoint is required")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.type", "redis")

	v.SetDefault("observability.serviceName", "leaselock")
	v.SetDefault("observability.serviceVersion", "0.1.0")
	v.SetDefault("observability.environment", "development")
	v.SetDefault("observability.otelEndpoint", "localhost:4317")

	v.SetDefault("logger.level", "LOG_LEVELS_INFOLEVEL")
}
