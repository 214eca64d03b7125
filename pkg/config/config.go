package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (PROVIDER=postgres 일 때만 필수)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data provider
	Provider ProviderConfig

	// Valuation cache
	Cache CacheConfig

	// Screening
	Screen ScreenConfig

	// Scheduler
	Schedule ScheduleConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ProviderConfig selects and configures the market data source
type ProviderConfig struct {
	Kind    string // http, postgres, file
	BaseURL string
	File    string // JSON fixtures (PROVIDER=file)
	APIKey  string
	RPS     float64 // 초당 요청 수 (0 = 무제한)
	Timeout time.Duration
}

// CacheConfig holds ValuationCache settings
type CacheConfig struct {
	TTL time.Duration
}

// ScreenConfig holds universe sweep settings
type ScreenConfig struct {
	Workers      int
	ProfilesFile string // optional YAML overrides for philosophy profiles
	UniverseDir  string // directory scanned for *_tickers.csv
}

// ScheduleConfig holds the periodic sweep settings
type ScheduleConfig struct {
	Cron       string // with seconds
	Universe   string
	Philosophy string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Market data provider
		Provider: ProviderConfig{
			Kind:    getEnv("PROVIDER", "http"),
			BaseURL: getEnv("PROVIDER_BASE_URL", "http://localhost:8090"),
			File:    getEnv("PROVIDER_FILE", ""),
			APIKey:  getEnv("PROVIDER_API_KEY", ""),
			RPS:     getEnvAsFloat("PROVIDER_RPS", 5),
			Timeout: getEnvAsDuration("PROVIDER_TIMEOUT", "10s"),
		},

		// Valuation cache
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", "15m"),
		},

		// Screening
		Screen: ScreenConfig{
			Workers:      getEnvAsInt("SCREEN_WORKERS", 8),
			ProfilesFile: getEnv("PROFILES_FILE", ""),
			UniverseDir:  getEnv("UNIVERSE_DIR", "data"),
		},

		// Scheduler
		Schedule: ScheduleConfig{
			Cron:       getEnv("SCHEDULE_CRON", "0 */30 * * * *"),
			Universe:   getEnv("SCHEDULE_UNIVERSE", "Dow 30"),
			Philosophy: getEnv("SCHEDULE_PHILOSOPHY", "ValueDCF"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Provider.Kind {
	case "http":
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("PROVIDER_BASE_URL is required when PROVIDER=http")
		}
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when PROVIDER=postgres")
		}
	case "file":
		if c.Provider.File == "" {
			return fmt.Errorf("PROVIDER_FILE is required when PROVIDER=file")
		}
	default:
		return fmt.Errorf("PROVIDER must be one of: http, postgres, file")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.Screen.Workers < 1 {
		return fmt.Errorf("SCREEN_WORKERS must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
