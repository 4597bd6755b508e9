package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Extractor backends
const (
	ExtractorLocal = "local"
	ExtractorLLM   = "llm"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Redis      RedisConfig
	Server     ServerConfig
	Search     SearchConfig
	Catalog    CatalogConfig
	Extractor  ExtractorConfig
	Logging    LoggingConfig
	OpenAI     OpenAIConfig
}

// PostgreSQLConfig holds the optional catalog database configuration.
// When neither DSN nor Host is set the mock catalog is used.
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// RedisConfig holds the optional session cache configuration
type RedisConfig struct {
	Address    string
	Password   string
	DB         int
	SessionTTL time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
	DefaultSort  string
}

// CatalogConfig controls the generated mock catalog
type CatalogConfig struct {
	MockPerDistrict int
	Seed            int64
}

// ExtractorConfig selects the intent extraction backend
type ExtractorConfig struct {
	Backend     string
	TurnTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// OpenAIConfig holds the OpenAI-compatible chat API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	Timeout         int
	Enabled         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "evinburada"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Redis: RedisConfig{
			Address:    getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 24),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 100),
			DefaultSort:  getEnv("SEARCH_DEFAULT_SORT", "newest"),
		},
		Catalog: CatalogConfig{
			MockPerDistrict: getEnvAsInt("CATALOG_MOCK_PER_DISTRICT", 30),
			Seed:            int64(getEnvAsInt("CATALOG_SEED", 42)),
		},
		Extractor: ExtractorConfig{
			Backend:     getEnv("EXTRACTOR", ""),
			TurnTimeout: time.Duration(getEnvAsInt("TURN_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
	}

	// Default to the hosted backend only when it can actually be reached
	if cfg.Extractor.Backend == "" {
		cfg.Extractor.Backend = ExtractorLocal
		if cfg.OpenAI.Enabled {
			cfg.Extractor.Backend = ExtractorLLM
		}
	}
	if cfg.Extractor.Backend != ExtractorLocal && cfg.Extractor.Backend != ExtractorLLM {
		return nil, fmt.Errorf("invalid EXTRACTOR %q, must be %q or %q", cfg.Extractor.Backend, ExtractorLocal, ExtractorLLM)
	}
	if cfg.Extractor.Backend == ExtractorLLM && !cfg.OpenAI.Enabled {
		return nil, fmt.Errorf("EXTRACTOR=%s requires OPENAI_API_KEY", ExtractorLLM)
	}
	if cfg.Search.DefaultLimit <= 0 || cfg.Search.MaxLimit < cfg.Search.DefaultLimit {
		return nil, fmt.Errorf("invalid search limits: default=%d max=%d", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}

	return cfg, nil
}

// PostgreSQLEnabled reports whether a catalog database is configured
func (c *Config) PostgreSQLEnabled() bool {
	return c.PostgreSQL.DSN != "" || c.PostgreSQL.Host != ""
}

// RedisEnabled reports whether the session cache should use Redis
func (c *Config) RedisEnabled() bool {
	return c.Redis.Address != ""
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
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
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
