package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
}

// AuthConfig carries the session settings plus every throttle/lockout threshold.
// Defaults match the production policy: 20 login attempts per IP per 15 minutes,
// 5 credential failures per account per hour before a one-hour lock, and
// 3-per-email / 10-per-IP signups per hour.
type AuthConfig struct {
	JWTSecret     string
	SessionExpiry time.Duration

	LoginIPMaxAttempts int
	LoginIPWindow      time.Duration

	SignupEmailMaxAttempts int
	SignupEmailWindow      time.Duration
	SignupIPMaxAttempts    int
	SignupIPWindow         time.Duration

	MaxFailedLogins   int
	FailedLoginWindow time.Duration
	LockDuration      time.Duration

	ReaperInterval time.Duration

	TimingDelayBaseMs   int
	TimingDelayRandomMs int
}

type EmailConfig struct {
	Enabled     bool
	AWSRegion   string
	FromAddress string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "blockplant"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseCSV(getEnv("ALLOWED_ORIGINS", "")),
			TrustedProxies: parseCSV(getEnv("TRUSTED_PROXIES", "")),
		},
		Auth: AuthConfig{
			JWTSecret:     jwtSecret,
			SessionExpiry: getEnvAsDuration("SESSION_EXPIRY", 12*time.Hour),

			LoginIPMaxAttempts: getEnvAsInt("LOGIN_IP_MAX_ATTEMPTS", 20),
			LoginIPWindow:      getEnvAsDuration("LOGIN_IP_WINDOW", 15*time.Minute),

			SignupEmailMaxAttempts: getEnvAsInt("SIGNUP_EMAIL_MAX_ATTEMPTS", 3),
			SignupEmailWindow:      getEnvAsDuration("SIGNUP_EMAIL_WINDOW", 1*time.Hour),
			SignupIPMaxAttempts:    getEnvAsInt("SIGNUP_IP_MAX_ATTEMPTS", 10),
			SignupIPWindow:         getEnvAsDuration("SIGNUP_IP_WINDOW", 1*time.Hour),

			MaxFailedLogins:   getEnvAsInt("MAX_FAILED_LOGINS", 5),
			FailedLoginWindow: getEnvAsDuration("FAILED_LOGIN_WINDOW", 1*time.Hour),
			LockDuration:      getEnvAsDuration("ACCOUNT_LOCK_DURATION", 1*time.Hour),

			ReaperInterval: getEnvAsDuration("THROTTLE_REAPER_INTERVAL", 1*time.Hour),

			TimingDelayBaseMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 100),
			TimingDelayRandomMs: getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
		},
		Email: EmailConfig{
			Enabled:     getEnvAsBool("EMAIL_ENABLED", false),
			AWSRegion:   getEnv("AWS_REGION", "eu-west-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@blockplant.local"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for the session secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
