package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the portal and the terminal client.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// BackendConfig points at the remote marketplace/banking API.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// StorageKind selects where session tokens are mirrored.
type StorageKind string

const (
	StorageMemory   StorageKind = "memory"
	StorageFile     StorageKind = "file"
	StorageRedis    StorageKind = "redis"
	StoragePostgres StorageKind = "postgres"
)

// SessionConfig controls the session token cache.
type SessionConfig struct {
	Storage        StorageKind
	CookieName     string
	CookieSecure   bool
	FilePath       string
	SealingKeyHex  string
	AutoResolve    bool
	IdleTTLMinutes int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	storage := StorageKind(strings.ToLower(getEnv("SESSION_STORAGE", string(StorageMemory))))
	switch storage {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres:
	default:
		return nil, fmt.Errorf("invalid SESSION_STORAGE %q", storage)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "market-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:5000"), "/"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 30),
		},
		Session: SessionConfig{
			Storage:        storage,
			CookieName:     getEnv("SESSION_COOKIE_NAME", "market_session"),
			CookieSecure:   getEnvAsBool("SESSION_COOKIE_SECURE", false),
			FilePath:       getEnv("SESSION_FILE", defaultSessionFile()),
			SealingKeyHex:  os.Getenv("SESSION_SEALING_KEY"),
			AutoResolve:    getEnvAsBool("SESSION_AUTO_RESOLVE_ROLE", true),
			IdleTTLMinutes: getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 60),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_SESSION_PREFIX", "market:session:"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if _, err := cfg.Session.SealingKey(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout is the transport-level timeout for backend calls. Zero means none.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// IdleTTL is how long an unused browser workspace is kept in memory.
func (s SessionConfig) IdleTTL() time.Duration {
	if s.IdleTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.IdleTTLMinutes) * time.Minute
}

// SealingKey decodes the optional 32-byte key used to encrypt mirrored tokens.
// A nil key means tokens are stored as-is.
func (s SessionConfig) SealingKey() (*[32]byte, error) {
	if s.SealingKeyHex == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s.SealingKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SEALING_KEY: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("SESSION_SEALING_KEY must be 32 bytes, got %d", len(raw))
	}
	var key [32]byte
	copy(key[:], raw)
	return &key, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".market", "session.json")
	}
	return filepath.Join(home, ".market", "session.json")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
