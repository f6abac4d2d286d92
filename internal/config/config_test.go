package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "APP_ENV", "JWT_SECRET", "DB_DRIVER", "DB_PATH", "AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW_SECONDS", "BCRYPT_COST")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "tasks.db", cfg.DBPath)
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.UsingDefaultSecret())
	assert.Equal(t, 5, cfg.Limit.AuthRequests)
	assert.Equal(t, 60*time.Second, cfg.Limit.AuthWindow())
	assert.Equal(t, DefaultBcryptCost, cfg.BcryptCost)
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	unsetEnv(t, "DB_DRIVER")
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_PATH", "/tmp/other.db")
	t.Setenv("AUTH_RATE_LIMIT", "9")
	t.Setenv("BCRYPT_COST", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.False(t, cfg.UsingDefaultSecret())
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 9, cfg.Limit.AuthRequests)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "prod without secret",
			cfg:     Config{Env: EnvProd, DBDriver: DriverSQLite},
			wantErr: ErrMissingJWTSecret,
		},
		{
			name:    "postgres without dsn",
			cfg:     Config{Env: EnvDev, DBDriver: DriverPostgres},
			wantErr: ErrMissingDSN,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Env: EnvDev, DBDriver: "mysql"},
			wantErr: ErrUnknownDriver,
		},
		{
			name:    "unknown env",
			cfg:     Config{Env: "staging", DBDriver: DriverSQLite},
			wantErr: ErrUnknownEnv,
		},
		{
			name:    "bcrypt cost too low",
			cfg:     Config{Env: EnvDev, DBDriver: DriverSQLite, BcryptCost: 2},
			wantErr: ErrBcryptCost,
		},
		{
			name:    "bcrypt cost too high",
			cfg:     Config{Env: EnvDev, DBDriver: DriverSQLite, BcryptCost: 32},
			wantErr: ErrBcryptCost,
		},
		{
			name: "postgres with dsn",
			cfg:  Config{Env: EnvProd, DBDriver: DriverPostgres, DatabaseURL: "postgres://x", JWTSecret: "k"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateFillsDefaultSecretOutsideProd(t *testing.T) {
	cfg := Config{Env: EnvDev, DBDriver: DriverSQLite}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, DefaultBcryptCost, cfg.BcryptCost)
}
