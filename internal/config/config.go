package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token store drivers.
const (
	StoreDriverFile   = "file"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

// Config aggregates runtime configuration for the client and the fixture backend.
type Config struct {
	App     AppConfig
	API     APIConfig
	Store   StoreConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	Session SessionConfig
	Metrics MetricsConfig
	Stub    StubConfig
}

// AppConfig identifies the running program.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig controls how the backend is reached.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
	LoginPath             string
}

// StoreConfig selects where the bearer token is persisted.
type StoreConfig struct {
	Driver   string
	FilePath string
	Key      string
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

// SessionConfig tunes the session lifecycle.
type SessionConfig struct {
	ExpiryGraceMillis int
}

// MetricsConfig names the exported metric families.
type MetricsConfig struct {
	Namespace string
}

// StubConfig configures the in-memory fixture backend.
type StubConfig struct {
	Host                  string
	Port                  string
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	SeedPassword          string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("TOKEN_STORE", StoreDriverFile))
	switch driver {
	case StoreDriverFile, StoreDriverRedis, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("invalid TOKEN_STORE %q", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "docdesk"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:               strings.TrimRight(getEnv("DOCDESK_API_URL", getEnv("VITE_API_URL", "http://localhost:8080")), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			LoginPath:             getEnv("DOCDESK_LOGIN_PATH", "/login"),
		},
		Store: StoreConfig{
			Driver:   driver,
			FilePath: getEnv("TOKEN_FILE", defaultTokenFile()),
			Key:      getEnv("TOKEN_KEY", "token"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "docdesk:"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "warn"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Session: SessionConfig{
			ExpiryGraceMillis: getEnvAsInt("SESSION_EXPIRY_GRACE_MS", 500),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", "docdesk"),
		},
		Stub: StubConfig{
			Host:                  getEnv("STUB_HOST", "127.0.0.1"),
			Port:                  getEnv("STUB_PORT", "8080"),
			JWTSecret:             getEnv("STUB_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("STUB_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("STUB_BCRYPT_COST", 10),
			SeedPassword:          getEnv("STUB_SEED_PASSWORD", "password"),
		},
	}

	return cfg, nil
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ExpiryGrace returns the margin added to every scheduled expiry.
func (s SessionConfig) ExpiryGrace() time.Duration {
	if s.ExpiryGraceMillis < 0 {
		return 0
	}
	return time.Duration(s.ExpiryGraceMillis) * time.Millisecond
}

// Addr returns the fixture backend bind address.
func (s StubConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// defaultTokenFile mirrors the XDG layout: $XDG_CONFIG_HOME/docdesk/token.
func defaultTokenFile() string {
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "docdesk-token")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "docdesk", "token")
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
