package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Logging    LoggingConfig    `yaml:"logging"`
	Moderation ModerationConfig `yaml:"moderation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Tracing    TracingConfig    `yaml:"tracing"`
	RateLimit  RateLimitConfig  `yaml:"ratelimit"`
	CORS       CORSConfig       `yaml:"cors"`
}

type ServerConfig struct {
	Port            string `yaml:"port" env:"SERVER_PORT"`
	Mode            string `yaml:"mode" env:"SERVER_MODE"`
	ReadTimeout     string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig selects the store. Driver "memory" keeps everything in process.
type DatabaseConfig struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER"`
	URL             string `yaml:"url" env:"DATABASE_URL"`
	Host            string `yaml:"host" env:"DB_HOST"`
	Port            string `yaml:"port" env:"DB_PORT"`
	User            string `yaml:"user" env:"DB_USER"`
	Password        string `yaml:"password" env:"DB_PASSWORD"`
	DBName          string `yaml:"dbname" env:"DB_NAME"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
	MaxConns        int32  `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns        int32  `yaml:"min_conns" env:"DB_MIN_CONNS"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

type JWTConfig struct {
	Secret                 string `yaml:"secret" env:"JWT_SECRET"`
	AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
	RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
	Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"` // json or pretty
}

// ModerationConfig controls whether published events and campaigns wait for an admin.
type ModerationConfig struct {
	RequireApproval bool `yaml:"require_approval" env:"MODERATION_REQUIRE_APPROVAL"`
}

type SchedulerConfig struct {
	Enabled       bool   `yaml:"enabled" env:"SCHEDULER_ENABLED"`
	LifecycleSpec string `yaml:"lifecycle_spec" env:"SCHEDULER_LIFECYCLE_SPEC"`
	JobTimeout    string `yaml:"job_timeout" env:"SCHEDULER_JOB_TIMEOUT"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" env:"TRACING_ENABLED"`
	Exporter     string  `yaml:"exporter" env:"TRACING_EXPORTER"`
	ServiceName  string  `yaml:"service_name" env:"TRACING_SERVICE_NAME"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"TRACING_OTLP_ENDPOINT"`
	SampleRate   float64 `yaml:"sample_rate" env:"TRACING_SAMPLE_RATE"`
}

// RateLimitConfig bounds mutating requests per client IP.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled" env:"RATELIMIT_ENABLED"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATELIMIT_RPS"`
	Burst             int     `yaml:"burst" env:"RATELIMIT_BURST"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
	AllowCredentials bool     `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS"`
}

// LoadConfig builds the configuration from defaults, the YAML file at configPath,
// a .env file in the working directory and the process environment, in that order.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// optional
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "debug"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Driver = "postgres"
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "alumni"
	config.Database.SSLMode = "disable"
	config.Database.MaxConns = 20
	config.Database.MinConns = 2
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "alumniconnect"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Moderation.RequireApproval = true

	config.Scheduler.Enabled = true
	config.Scheduler.LifecycleSpec = "@every 1m"
	config.Scheduler.JobTimeout = "30s"

	config.Tracing.Exporter = "none"
	config.Tracing.ServiceName = "alumni-platform"
	config.Tracing.OTLPEndpoint = "localhost:4317"
	config.Tracing.SampleRate = 1.0

	config.RateLimit.Enabled = true
	config.RateLimit.RequestsPerSecond = 5
	config.RateLimit.Burst = 20

	config.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	config.CORS.AllowCredentials = true
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "postgres":
		if config.Database.URL == "" && config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver %q (must be 'postgres' or 'memory')", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"server read timeout":          config.Server.ReadTimeout,
		"server write timeout":         config.Server.WriteTimeout,
		"server shutdown timeout":      config.Server.ShutdownTimeout,
		"scheduler job timeout":        config.Scheduler.JobTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.RequestsPerSecond <= 0 || config.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests_per_second and burst")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

// Duration parses a validated duration field.
func Duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}
