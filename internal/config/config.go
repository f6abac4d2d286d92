package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultJWTSecret is a known weak value accepted outside prod only.
	DefaultJWTSecret = "your-secret-key-change-in-production"

	DefaultBcryptCost = 12
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is required in prod")
	ErrMissingDSN       = errors.New("DATABASE_URL is required for the postgres driver")
	ErrUnknownDriver    = errors.New("unknown DB_DRIVER")
	ErrUnknownEnv       = errors.New("unknown APP_ENV")
	ErrBcryptCost       = errors.New("BCRYPT_COST out of range")
)

type Config struct {
	Env     string `env:"APP_ENV" env-default:"local"`
	AppPort string `env:"APP_PORT" env-default:"8080"`

	DBDriver    string `env:"DB_DRIVER" env-default:"sqlite"`
	DBPath      string `env:"DB_PATH" env-default:"tasks.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret  string `env:"JWT_SECRET"`
	BcryptCost int    `env:"BCRYPT_COST" env-default:"12"`

	Log   LogConfig
	Redis RedisConfig
	Limit LimitConfig

	AllowedOrigin   string        `env:"ALLOWED_ORIGIN"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`
	JSON       bool   `env:"LOG_JSON" env-default:"false"`
	File       string `env:"LOG_FILE"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"5"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type LimitConfig struct {
	AuthRequests      int `env:"AUTH_RATE_LIMIT" env-default:"5"`
	AuthWindowSeconds int `env:"AUTH_RATE_WINDOW_SECONDS" env-default:"60"`
	APIRequests       int `env:"API_RATE_LIMIT" env-default:"120"`
	APIWindowSeconds  int `env:"API_RATE_WINDOW_SECONDS" env-default:"60"`
}

func (l LimitConfig) AuthWindow() time.Duration {
	return time.Duration(l.AuthWindowSeconds) * time.Second
}

func (l LimitConfig) APIWindow() time.Duration {
	return time.Duration(l.APIWindowSeconds) * time.Second
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field rules, fills the weak default secret
// outside prod and the default bcrypt cost.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEnv, c.Env)
	}

	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DBDriver)
	}

	if c.JWTSecret == "" {
		if c.Env == EnvProd {
			return ErrMissingJWTSecret
		}
		c.JWTSecret = DefaultJWTSecret
	}

	switch {
	case c.BcryptCost == 0:
		c.BcryptCost = DefaultBcryptCost
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("%w: %d", ErrBcryptCost, c.BcryptCost)
	}
	return nil
}

// UsingDefaultSecret reports whether the weak fallback secret is active.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}
