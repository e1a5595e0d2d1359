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
	Server   ServerConfig
	Auth     AuthConfig
	Security SecurityConfig
	Email    EmailConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SecurityConfig holds the anomaly-detection tunables. Every threshold the
// decision engine consults lives here; none are compiled-in constants.
type SecurityConfig struct {
	MaxSessionsPerUser  int           // bounded per-user session history
	MaxLoginAttempts    int           // bounded global attempt ledger
	ActiveSessionWindow time.Duration // how long a session counts as "active"
	MaxTravelSpeedKmh   float64       // plausible travel ceiling (commercial flight)
	LocationToleranceKm float64       // two fixes closer than this are the same place
}

type EmailConfig struct {
	Enabled     bool
	AWSRegion   string
	FromAddress string
	AdminEmails []string
	SummaryHour int // hour of day (0-23) for the daily summary email
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: parseCSV(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:          jwtSecret,
			AccessTokenExpiry:  getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
		},
		Security: SecurityConfig{
			MaxSessionsPerUser:  getEnvAsInt("MAX_SESSIONS_PER_USER", 50),
			MaxLoginAttempts:    getEnvAsInt("MAX_LOGIN_ATTEMPTS", 500),
			ActiveSessionWindow: getEnvAsDuration("ACTIVE_SESSION_WINDOW", 24*time.Hour),
			MaxTravelSpeedKmh:   getEnvAsFloat("MAX_TRAVEL_SPEED_KMH", 900),
			LocationToleranceKm: getEnvAsFloat("LOCATION_TOLERANCE_KM", 1),
		},
		Email: EmailConfig{
			Enabled:     getEnv("EMAIL_FROM_ADDRESS", "") != "",
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
			AdminEmails: parseCSV(getEnv("ADMIN_ALERT_EMAILS", "")),
			SummaryHour: getEnvAsInt("DAILY_SUMMARY_HOUR", 9),
		},
	}

	if err := cfg.Security.validate(); err != nil {
		return nil, err
	}

	if cfg.Email.SummaryHour < 0 || cfg.Email.SummaryHour > 23 {
		return nil, fmt.Errorf("DAILY_SUMMARY_HOUR must be between 0 and 23 (got %d)", cfg.Email.SummaryHour)
	}

	return cfg, nil
}

func (c *SecurityConfig) validate() error {
	if c.MaxSessionsPerUser <= 0 {
		return fmt.Errorf("MAX_SESSIONS_PER_USER must be positive (got %d)", c.MaxSessionsPerUser)
	}
	if c.MaxLoginAttempts <= 0 {
		return fmt.Errorf("MAX_LOGIN_ATTEMPTS must be positive (got %d)", c.MaxLoginAttempts)
	}
	if c.ActiveSessionWindow <= 0 {
		return fmt.Errorf("ACTIVE_SESSION_WINDOW must be positive (got %v)", c.ActiveSessionWindow)
	}
	if c.MaxTravelSpeedKmh <= 0 {
		return fmt.Errorf("MAX_TRAVEL_SPEED_KMH must be positive (got %v)", c.MaxTravelSpeedKmh)
	}
	if c.LocationToleranceKm < 0 {
		return fmt.Errorf("LOCATION_TOLERANCE_KM cannot be negative (got %v)", c.LocationToleranceKm)
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for the JWT secret
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

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

func parseCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
