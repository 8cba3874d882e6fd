package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Database     DatabaseConfig
	Mail         MailConfig
	Verification VerificationConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig

	// AppName is the product name shown in outgoing emails
	AppName string

	// JWTSecret signs the bearer tokens accepted by the resend endpoint
	JWTSecret string

	// Server configuration
	ServerPort int
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	MaxConns int
}

// MailConfig holds the outgoing mail settings. APIKey is the provider key
// used as the SMTP password for the relay.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	APIKey   string
	From     string
	FromName string
	UseSSL   bool
}

// VerificationConfig controls token lifetime and the verification link
type VerificationConfig struct {
	TokenTTL      time.Duration
	PurgeInterval time.Duration
	BaseURL       string
	LockTTL       time.Duration
	LockWait      time.Duration
}

// RedisConfig enables the Redis token lock when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RateLimitConfig is the per-IP request budget
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	TTL               time.Duration
}

// DSN returns the key/value connection string understood by pgx
func (c DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", c.MaxConns)
	}
	return dsn
}

// URL returns the postgres:// form used by golang-migrate
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Enabled reports whether an SMTP relay is configured
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// Validate checks the fields required to talk to the relay
func (m MailConfig) Validate() error {
	if m.Host == "" {
		return errors.New("mail host is required")
	}
	if m.APIKey == "" {
		return errors.New("mail api key is required")
	}
	if m.From == "" {
		return errors.New("mail from address is required")
	}
	return nil
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	dbMaxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	serverPort, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	mailPort, err := getEnvInt("MAIL_PORT", 587)
	if err != nil {
		return nil, err
	}
	mailSSL, err := getEnvBool("MAIL_USE_SSL", false)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := getEnvDuration("VERIFICATION_TOKEN_TTL", domain.DefaultTokenTTL)
	if err != nil {
		return nil, err
	}
	purgeInterval, err := getEnvDuration("VERIFICATION_PURGE_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	lockTTL, err := getEnvDuration("TOKEN_LOCK_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}
	lockWait, err := getEnvDuration("TOKEN_LOCK_WAIT", 2*time.Second)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	rps, err := getEnvInt("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, err
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "owner"),
			Password: getEnv("DB_PASSWORD", "ownerTest"),
			Name:     getEnv("DB_NAME", "users"),
			MaxConns: dbMaxConns,
		},
		Mail: MailConfig{
			Host:     getEnv("MAIL_HOST", ""),
			Port:     mailPort,
			Username: getEnv("MAIL_USERNAME", "api"),
			APIKey:   getEnv("MAILGUN_API_KEY", ""),
			From:     getEnv("MAIL_FROM", "no-reply@example.com"),
			FromName: getEnv("MAIL_FROM_NAME", "The Team"),
			UseSSL:   mailSSL,
		},
		Verification: VerificationConfig{
			TokenTTL:      tokenTTL,
			PurgeInterval: purgeInterval,
			BaseURL:       getEnv("VERIFICATION_BASE_URL", "http://localhost:8080/api/auth/verify-email"),
			LockTTL:       lockTTL,
			LockWait:      lockWait,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: rps,
			Burst:             burst,
			TTL:               3 * time.Minute,
		},
		AppName:    getEnv("APP_NAME", ""),
		JWTSecret:  getEnv("JWT_SECRET", ""),
		ServerPort: serverPort,
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return intValue, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return boolValue, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
