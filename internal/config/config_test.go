package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "academy", Password: "s3cret", DBName: "sportsadmin", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=academy password=s3cret dbname=sportsadmin sslmode=require", cfg.DSN())

	cfg.Password = `it's a pass\word`
	assert.Contains(t, cfg.DSN(), `password='it\'s a pass\\word'`)

	cfg.Password = ""
	assert.Contains(t, cfg.DSN(), "password='' ")
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_MAX_UPLOAD_MB", "25")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1h")
	t.Setenv("REDIS_LOCK_WAIT", "750ms")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("STORAGE_UPLOAD_TIMEOUT", "5s")
	t.Setenv("WORKFLOW_EXPIRY_WARNING_DAYS", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.academy.co, https://staff.academy.co")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int64(25<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 750*time.Millisecond, cfg.Redis.LockWait)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiry)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, 5*time.Second, cfg.Storage.UploadTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Workflow.ExpiryWindow())
	assert.Equal(t, []string{"https://admin.academy.co", "https://staff.academy.co"}, cfg.Server.AllowedOrigins)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("DB_PORT", "not-number")
	t.Setenv("DB_PING_TIMEOUT", "soon")
	t.Setenv("JWT_ACCESS_EXPIRY", "bad-duration")
	t.Setenv("STORAGE_USE_SSL", "maybe")
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Database.PingTimeout)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, 30*time.Second, cfg.Storage.UploadTimeout)
	assert.Equal(t, 15, cfg.Workflow.ExpiryWarningDays)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
}

func TestValidate(t *testing.T) {
	dev := &Config{Server: ServerConfig{Env: "development", AllowedOrigins: []string{"*"}}, JWT: JWTConfig{Secret: defaultJWTSecret}}
	assert.NoError(t, dev.Validate())

	prod := &Config{
		Server: ServerConfig{Env: "production", AllowedOrigins: []string{"https://admin.academy.co"}},
		JWT:    JWTConfig{Secret: defaultJWTSecret},
	}
	assert.ErrorIs(t, prod.Validate(), ErrInsecureProduction)

	prod.JWT.Secret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, prod.Validate())

	prod.Server.AllowedOrigins = append(prod.Server.AllowedOrigins, "*")
	assert.ErrorContains(t, prod.Validate(), "wildcard")
}
