package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Security  SecurityConfig
	Business  BusinessConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	JWTSecret         string
	SessionTTL        time.Duration
	EnableRateLimit   bool
	RateLimitRPS      int
	RateLimitBurst    int
	LoginAttemptsMax  int
	LoginAttemptsSpan time.Duration
	AllowedOrigins    []string
}

type BusinessConfig struct {
	TimeZone       string
	CompanyName    string
	CompanyAddress string
	CompanyPhone   string
}

// BootstrapConfig seeds the first ADMIN account when both fields are set.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Load reads the environment, after merging an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:   getEnvString("DATABASE_DRIVER", DriverPostgres),
			Host:     getEnvString("DB_HOST", "localhost"),
			Port:     getEnvString("DB_PORT", "5432"),
			User:     getEnvString("DB_USER", "app_user"),
			Password: getEnvString("DB_PASSWORD", "postgres_password"),
			DBName:   getEnvString("DB_NAME", "backoffice"),
			SSLMode:  getEnvString("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnvString("REDIS_URL", "localhost:6379"),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: getEnvDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Logger: LoggerConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			JWTSecret:         getEnvString("JWT_SECRET", ""),
			SessionTTL:        getEnvDuration("SESSION_TTL", 12*time.Hour),
			EnableRateLimit:   getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:      getEnvInt("SECURITY_RATE_LIMIT_RPS", 50),
			RateLimitBurst:    getEnvInt("SECURITY_RATE_LIMIT_BURST", 20),
			LoginAttemptsMax:  getEnvInt("SECURITY_LOGIN_ATTEMPTS", 5),
			LoginAttemptsSpan: getEnvDuration("SECURITY_LOGIN_WINDOW", time.Minute),
			AllowedOrigins:    getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Business: BusinessConfig{
			TimeZone:       getEnvString("BUSINESS_TIMEZONE", "America/Argentina/Tucuman"),
			CompanyName:    getEnvString("COMPANY_NAME", "Distribuidora"),
			CompanyAddress: getEnvString("COMPANY_ADDRESS", ""),
			CompanyPhone:   getEnvString("COMPANY_PHONE", ""),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    getEnvString("BOOTSTRAP_ADMIN_EMAIL", ""),
			AdminPassword: getEnvString("BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	validDrivers := []string{DriverPostgres, DriverMemory}
	if !contains(validDrivers, c.Database.Driver) {
		return fmt.Errorf("invalid database driver %q, must be one of: %s", c.Database.Driver, strings.Join(validDrivers, ", "))
	}

	if c.Database.Driver == DriverPostgres && c.Database.MaxConns <= 0 {
		return fmt.Errorf("database max connections must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	if c.Security.LoginAttemptsMax <= 0 {
		return fmt.Errorf("login attempts must be positive")
	}

	if _, err := time.LoadLocation(c.Business.TimeZone); err != nil {
		return fmt.Errorf("invalid business time zone %q: %w", c.Business.TimeZone, err)
	}

	if (c.Bootstrap.AdminEmail == "") != (c.Bootstrap.AdminPassword == "") {
		return fmt.Errorf("bootstrap admin needs both email and password")
	}

	return nil
}

// Location returns the business time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN is the libpq style connection string for the Postgres pool.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
		c.MaxConns,
	)
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
