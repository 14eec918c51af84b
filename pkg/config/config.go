package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/praekelt/go-store-service/pkg/keyvalue"
	"github.com/praekelt/go-store-service/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage keyvalue.Config

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string

	// CORS allowed origins; empty disables the CORS middleware.
	CORSOrigins []string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// fileConfig is the YAML file schema. Every field is optional; unset
// fields fall through to defaults and environment variables.
type fileConfig struct {
	Server struct {
		Host            string   `yaml:"host"`
		Port            string   `yaml:"port"`
		ReadTimeout     string   `yaml:"read_timeout"`
		WriteTimeout    string   `yaml:"write_timeout"`
		IdleTimeout     string   `yaml:"idle_timeout"`
		ShutdownTimeout string   `yaml:"shutdown_timeout"`
		HealthPort      string   `yaml:"health_port"`
		CORSOrigins     []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Storage struct {
		Type         string `yaml:"type"`
		Namespace    string `yaml:"namespace"`
		RedisURL     string `yaml:"redis_url"`
		RedisDB      *int   `yaml:"redis_db"`
		SQLitePath   string `yaml:"sqlite_path"`
		PostgresURL  string `yaml:"postgres_url"`
		CacheEnabled *bool  `yaml:"cache_enabled"`
		CacheSize    int    `yaml:"cache_size"`
	} `yaml:"storage"`
	Observability struct {
		LogLevel       string `yaml:"log_level"`
		MetricsEnabled *bool  `yaml:"metrics_enabled"`
	} `yaml:"observability"`
}

// LoadConfig loads configuration from the optional YAML file at path and
// from environment variables; the environment wins.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Storage: keyvalue.DefaultConfig(),
		Observability: ObservabilityConfig{
			LogLevel:       observability.InfoLevel,
			MetricsEnabled: true,
		},
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	setString(&c.Server.Host, fc.Server.Host)
	setString(&c.Server.Port, fc.Server.Port)
	setString(&c.Server.HealthPort, fc.Server.HealthPort)
	if len(fc.Server.CORSOrigins) > 0 {
		c.Server.CORSOrigins = fc.Server.CORSOrigins
	}
	if err := setDuration(&c.Server.ReadTimeout, fc.Server.ReadTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.WriteTimeout, fc.Server.WriteTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.IdleTimeout, fc.Server.IdleTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.ShutdownTimeout, fc.Server.ShutdownTimeout); err != nil {
		return err
	}

	setString(&c.Storage.Type, fc.Storage.Type)
	setString(&c.Storage.Namespace, fc.Storage.Namespace)
	setString(&c.Storage.RedisURL, fc.Storage.RedisURL)
	if fc.Storage.RedisDB != nil {
		c.Storage.RedisDB = *fc.Storage.RedisDB
	}
	setString(&c.Storage.SQLitePath, fc.Storage.SQLitePath)
	setString(&c.Storage.PostgresURL, fc.Storage.PostgresURL)
	if fc.Storage.CacheEnabled != nil {
		c.Storage.CacheEnabled = *fc.Storage.CacheEnabled
	}
	if fc.Storage.CacheSize > 0 {
		c.Storage.CacheSize = fc.Storage.CacheSize
	}

	if fc.Observability.LogLevel != "" {
		c.Observability.LogLevel = parseLogLevel(fc.Observability.LogLevel)
	}
	if fc.Observability.MetricsEnabled != nil {
		c.Observability.MetricsEnabled = *fc.Observability.MetricsEnabled
	}

	return nil
}

func (c *Config) applyEnv() {
	// Server config
	c.Server.Host = getEnv("STORESRV_HOST", c.Server.Host)
	c.Server.Port = getEnv("STORESRV_PORT", c.Server.Port)
	c.Server.HealthPort = getEnv("STORESRV_HEALTH_PORT", c.Server.HealthPort)
	c.Server.ReadTimeout = getEnvDuration("STORESRV_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("STORESRV_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("STORESRV_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("STORESRV_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	if origins := os.Getenv("STORESRV_CORS_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = strings.Split(origins, ",")
	}

	// Storage config
	c.Storage.Type = getEnv("STORESRV_STORAGE_TYPE", c.Storage.Type)
	c.Storage.Namespace = getEnv("STORESRV_STORAGE_NAMESPACE", c.Storage.Namespace)
	c.Storage.RedisURL = getEnv("STORESRV_REDIS_URL", c.Storage.RedisURL)
	c.Storage.RedisPassword = getEnv("STORESRV_REDIS_PASSWORD", c.Storage.RedisPassword)
	if redisDB := getEnvInt("STORESRV_REDIS_DB", -1); redisDB >= 0 {
		c.Storage.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("STORESRV_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		c.Storage.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("STORESRV_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		c.Storage.RedisPoolSize = redisPoolSize
	}
	c.Storage.SQLitePath = getEnv("STORESRV_SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.PostgresURL = getEnv("STORESRV_POSTGRES_URL", c.Storage.PostgresURL)
	if maxConns := getEnvInt("STORESRV_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		c.Storage.PostgresMaxConns = maxConns
	}
	if timeout := getEnvDuration("STORESRV_POSTGRES_TIMEOUT", 0); timeout > 0 {
		c.Storage.PostgresTimeout = timeout
	}
	c.Storage.CacheEnabled = getEnvBool("STORESRV_CACHE_ENABLED", c.Storage.CacheEnabled)
	if cacheSize := getEnvInt("STORESRV_CACHE_SIZE", 0); cacheSize > 0 {
		c.Storage.CacheSize = cacheSize
	}

	// Observability config
	if level := os.Getenv("STORESRV_LOG_LEVEL"); level != "" {
		c.Observability.LogLevel = parseLogLevel(level)
	}
	c.Observability.MetricsEnabled = getEnvBool("STORESRV_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Storage.Type {
	case "memory":
		// No backend settings required
	case "redis":
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis storage")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	case "postgres":
		if c.Storage.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be memory, redis, sqlite, or postgres)", c.Storage.Type)
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setDuration(dst *time.Duration, val string) error {
	if val == "" {
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", val, err)
	}
	*dst = d
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
