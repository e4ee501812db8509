// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"exchangebank/internal/rounding"
)

// Store kinds selectable in configuration.
const (
	StoreMemory   = "memory"
	StoreHistory  = "history"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Bank     BankConfig
	Worker   WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int  `mapstructure:"port"`
	ServeSwagger  bool `mapstructure:"serve_swagger"`
	ServeAsynqmon bool `mapstructure:"serve_asynqmon"`
}

// StoreConfig selects the rate store backing the bank.
type StoreConfig struct {
	Kind        string `mapstructure:"kind"`
	CacheTTLSec int    `mapstructure:"cache_ttl_sec"` // Redis read-through cache for dated stores; 0 disables it.
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for Asynq task queue (required).
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for the redis store and the rate cache.
	RatesKey  string `mapstructure:"rates_key"`
}

// BankConfig holds exchange engine settings.
type BankConfig struct {
	Rounding   string `mapstructure:"rounding"`
	ImportFile string `mapstructure:"import_file"`
}

// WorkerConfig holds background worker and task queue settings.
type WorkerConfig struct {
	Concurrency      int `mapstructure:"concurrency"`
	MaxRetry         int `mapstructure:"max_retry"`
	TimeoutSec       int `mapstructure:"timeout_sec"`
	CheckIntervalSec int `mapstructure:"check_interval_sec"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("EXCHBANK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	return decode(viper.GetViper())
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_asynqmon", true)
	v.SetDefault("store.kind", StoreMemory)
	v.SetDefault("store.cache_ttl_sec", 300)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "ratesdb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	v.SetDefault("redis.cache_addr", "redis_cache:6381")
	v.SetDefault("redis.rates_key", "exchange_rates")
	v.SetDefault("bank.rounding", "half_even")
	v.SetDefault("bank.import_file", "")
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.max_retry", 0)
	v.SetDefault("worker.timeout_sec", 30)
	v.SetDefault("worker.check_interval_sec", 5)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Store.Kind = strings.ToLower(strings.TrimSpace(cfg.Store.Kind))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

// UsesPostgres reports whether the configured store needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.Store.Kind == StorePostgres
}

// UsesRateCache reports whether lookups go through the Redis read-through cache.
func (c *Config) UsesRateCache() bool {
	return c.Store.CacheTTLSec > 0 && (c.Store.Kind == StorePostgres || c.Store.Kind == StoreHistory)
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	switch c.Store.Kind {
	case StoreMemory, StoreHistory, StorePostgres, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("store.kind must be one of memory, history, postgres, redis; got %q", c.Store.Kind))
	}
	if c.Store.CacheTTLSec < 0 {
		errs = append(errs, fmt.Errorf("store.cache_ttl_sec must be non-negative, got %d", c.Store.CacheTTLSec))
	}

	if c.UsesPostgres() {
		if c.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if c.Database.Port <= 0 {
			errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
		if c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
	}

	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set EXCHBANK_REDIS_ASYNQ_ADDR)"))
	}
	if (c.Store.Kind == StoreRedis || c.UsesRateCache()) && c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set EXCHBANK_REDIS_CACHE_ADDR)"))
	}

	if _, err := rounding.Lookup(c.Bank.Rounding); err != nil {
		errs = append(errs, fmt.Errorf("bank.rounding: %w", err))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.CheckIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.check_interval_sec must be positive, got %d", c.Worker.CheckIntervalSec))
	}

	return errors.Join(errs...)
}
