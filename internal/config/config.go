package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the immutable application configuration. It is built once at
// startup and passed by value or pointer into constructors; nothing reads
// the environment after Load returns.
type Config struct {
	OpenWeatherAPIKey string `mapstructure:"openweather_api_key"`
	WeatherAPIKey     string `mapstructure:"weatherapi_key"`

	// EnableMockData forces synthetic data for every model.
	EnableMockData bool `mapstructure:"enable_mock_data"`

	// UseBackend routes forecasts through the snowhound backend at APIBaseURL.
	UseBackend bool          `mapstructure:"use_backend"`
	APIBaseURL string        `mapstructure:"api_base_url" default:"http://localhost:3001" validate:"omitempty,url"`
	APITimeout time.Duration `mapstructure:"api_timeout" default:"30s" validate:"gt=0"`

	// ProviderRPS caps outbound calls per provider.
	ProviderRPS   float64 `mapstructure:"provider_rps" default:"5" validate:"gt=0"`
	ProviderBurst int     `mapstructure:"provider_burst" default:"5" validate:"gte=1"`

	StoreDir string `mapstructure:"store_dir" default:".snowhound" validate:"required"`

	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port" default:"3001" validate:"required,numeric"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" default:"40s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
}

type CacheConfig struct {
	Driver        string        `mapstructure:"driver" default:"memory" validate:"oneof=none memory sqlite redis"`
	TTL           time.Duration `mapstructure:"ttl" default:"1h" validate:"gt=0"`
	MemorySizeMB  int           `mapstructure:"memory_size_mb" default:"32" validate:"gte=1"`
	SQLitePath    string        `mapstructure:"sqlite_path" default:"snowhound-cache.db" validate:"required_if=Driver sqlite"`
	RedisAddr     string        `mapstructure:"redis_addr" default:"localhost:6379" validate:"required_if=Driver redis"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" validate:"gte=0"`
}

// RateLimitConfig bounds weather API requests per client IP.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" default:"50" validate:"gte=1"`
	Window   time.Duration `mapstructure:"window" default:"15m" validate:"gt=0"`
}

type SchedulerConfig struct {
	Enabled        bool          `mapstructure:"enabled" default:"true"`
	WarmupInterval time.Duration `mapstructure:"warmup_interval" default:"30m" validate:"gte=1m"`
	PruneInterval  time.Duration `mapstructure:"prune_interval" default:"15m" validate:"gte=1m"`
	// WarmupLocations are preset location ids to keep cached.
	WarmupLocations []string `mapstructure:"warmup_locations"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `mapstructure:"format" default:"json" validate:"oneof=json console"`
	Output string `mapstructure:"output" default:"stdout" validate:"required"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" default:"true"`
}

// envBindings maps config keys to environment variables.
var envBindings = map[string]string{
	"openweather_api_key":        "OPENWEATHER_API_KEY",
	"weatherapi_key":             "WEATHERAPI_KEY",
	"enable_mock_data":           "ENABLE_MOCK_DATA",
	"use_backend":                "USE_BACKEND",
	"api_base_url":               "API_BASE_URL",
	"api_timeout":                "API_TIMEOUT",
	"provider_rps":               "PROVIDER_RPS",
	"provider_burst":             "PROVIDER_BURST",
	"store_dir":                  "STORE_DIR",
	"server.port":                "PORT",
	"cache.driver":               "CACHE_DRIVER",
	"cache.ttl":                  "CACHE_TTL",
	"cache.memory_size_mb":       "CACHE_MEMORY_SIZE_MB",
	"cache.sqlite_path":          "CACHE_SQLITE_PATH",
	"cache.redis_addr":           "REDIS_ADDR",
	"cache.redis_password":       "REDIS_PASSWORD",
	"cache.redis_db":             "REDIS_DB",
	"rate_limit.requests":        "RATE_LIMIT_REQUESTS",
	"rate_limit.window":          "RATE_LIMIT_WINDOW",
	"scheduler.enabled":          "SCHEDULER_ENABLED",
	"scheduler.warmup_interval":  "SCHEDULER_WARMUP_INTERVAL",
	"scheduler.prune_interval":   "SCHEDULER_PRUNE_INTERVAL",
	"scheduler.warmup_locations": "WARMUP_LOCATIONS",
	"log.level":                  "LOG_LEVEL",
	"log.format":                 "LOG_FORMAT",
	"log.output":                 "LOG_OUTPUT",
	"metrics.enabled":            "METRICS_ENABLED",
}

// Load builds the configuration from struct defaults, an optional YAML file
// at path, a .env file if present, and the environment, then validates it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks struct constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Default returns a configuration with only struct defaults applied.
func Default() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	return cfg
}
