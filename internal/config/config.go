package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Workflow WorkflowConfig
	Log      LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// DSN returns the key/value form lib/pq expects. Values are quoted so
// passwords containing spaces or quotes survive.
func (c DatabaseConfig) DSN() string {
	pairs := [][2]string{
		{"host", c.Host},
		{"port", strconv.Itoa(c.Port)},
		{"user", c.User},
		{"password", c.Password},
		{"dbname", c.DBName},
		{"sslmode", c.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv[0]+"="+quoteDSNValue(kv[1]))
	}
	return strings.Join(parts, " ")
}

func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
	// LockTTL bounds how long a workflow entity lock may be held
	LockTTL time.Duration
	// LockWait bounds how long a request waits for a held lock
	LockWait time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// StorageConfig holds the S3-compatible blob store settings
type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	UploadTimeout time.Duration
	URLExpiry     time.Duration
}

// WorkflowConfig tunes the document expiry signals
type WorkflowConfig struct {
	ExpiryWarningDays  int
	ExpiryScanInterval time.Duration
}

// ExpiryWindow returns the look-ahead used for "expiring soon" documents.
func (c WorkflowConfig) ExpiryWindow() time.Duration {
	return time.Duration(c.ExpiryWarningDays) * 24 * time.Hour
}

// LogConfig holds log output settings
type LogConfig struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

const defaultJWTSecret = "change-this-in-production"

// ErrInsecureProduction is returned by Validate when production runs on development defaults.
var ErrInsecureProduction = errors.New("insecure production configuration")

// Validate rejects settings that are only acceptable outside production.
func (c *Config) Validate() error {
	if c.Server.Env != "production" {
		return nil
	}
	if c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32 {
		return fmt.Errorf("%w: JWT_SECRET must be set to at least 32 characters", ErrInsecureProduction)
	}
	for _, o := range c.Server.AllowedOrigins {
		if o == "*" {
			return fmt.Errorf("%w: CORS_ALLOWED_ORIGINS cannot be a wildcard", ErrInsecureProduction)
		}
	}
	return nil
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("SERVER_ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxUploadBytes: int64(getEnvAsInt("SERVER_MAX_UPLOAD_MB", 10)) << 20,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "sportsadmin"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			PingTimeout:     getEnvAsDuration("DB_PING_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
			LockTTL:  getEnvAsDuration("REDIS_LOCK_TTL", 10*time.Second),
			LockWait: getEnvAsDuration("REDIS_LOCK_WAIT", 3*time.Second),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", defaultJWTSecret),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			Bucket:        getEnv("STORAGE_BUCKET", "sportsadmin"),
			UseSSL:        getEnvAsBool("STORAGE_USE_SSL", false),
			UploadTimeout: getEnvAsDuration("STORAGE_UPLOAD_TIMEOUT", 30*time.Second),
			URLExpiry:     getEnvAsDuration("STORAGE_URL_EXPIRY", 15*time.Minute),
		},
		Workflow: WorkflowConfig{
			ExpiryWarningDays:  getEnvAsInt("WORKFLOW_EXPIRY_WARNING_DAYS", 15),
			ExpiryScanInterval: getEnvAsDuration("WORKFLOW_EXPIRY_SCAN_INTERVAL", 6*time.Hour),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", ""),
			FilePath:   getEnv("LOG_FILE_PATH", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
