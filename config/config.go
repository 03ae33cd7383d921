package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "ambi360-dev-secret"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Security SecurityConfig
	App      AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

type DatabaseConfig struct {
	DSN         string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	AutoMigrate bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis address is configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type SecurityConfig struct {
	JWTSecret       string
	JWTExpiration   time.Duration
	BcryptCost      int
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type AppConfig struct {
	Environment            string
	LogLevel               string
	LogFormat              string
	Version                string
	AccessLogRetentionDays int
	RetentionCron          string
	DraftTTL               time.Duration
	AdminUsername          string
	AdminEmail             string
	AdminPassword          string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			DSN:         getEnv("DB_DSN", ""),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvAsInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Name:        getEnv("DB_NAME", "ambi360"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 10),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
			JWTExpiration:   getEnvAsDuration("JWT_EXPIRATION", 24*time.Hour),
			BcryptCost:      getEnvAsInt("BCRYPT_COST", 12),
			LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 5),
			LoginRateWindow: getEnvAsDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		},
		App: AppConfig{
			Environment:            getEnv("APP_ENV", "development"),
			LogLevel:               getEnv("LOG_LEVEL", "info"),
			LogFormat:              getEnv("LOG_FORMAT", "json"),
			Version:                getEnv("APP_VERSION", "1.0.0"),
			AccessLogRetentionDays: getEnvAsInt("ACCESS_LOG_RETENTION_DAYS", 90),
			RetentionCron:          getEnv("RETENTION_CRON", "0 0 3 * * *"),
			DraftTTL:               getEnvAsDuration("DRAFT_TTL", 72*time.Hour),
			AdminUsername:          getEnv("ADMIN_USERNAME", "admin"),
			AdminEmail:             getEnv("ADMIN_EMAIL", "admin@ambi360.local"),
			AdminPassword:          getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_DSN or DB_HOST is required")
	}

	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && c.Security.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be changed in production")
	}

	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if c.Security.LoginRateLimit <= 0 || c.Security.LoginRateWindow <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
