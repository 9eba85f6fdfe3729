package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Practice identity
	PracticeID   string
	PracticeName string

	// Portal session auth
	PortalJWTSecret string

	// Wizard session storage
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
	SessionTTL     time.Duration
	EmailProbeWait time.Duration

	// PIMS directory (authenticated clients)
	DirectoryBaseURL string
	DirectoryAPIKey  string

	// Public provider directory (unauthenticated clients)
	PublicDirectoryBaseURL string

	// Address validation collaborator
	GeocodeBaseURL  string
	GeocodeMinLevel string

	// Routing engine (authenticated availability)
	RoutingBaseURL string
	RoutingAPIKey  string

	// Public availability backend
	PublicBookBaseURL string

	// Availability query window
	AvailabilityWindowDays int

	// Appointment-request submission endpoint
	SubmissionURL    string
	SubmissionAPIKey string

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins string

	// SendGrid confirmation email
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		PracticeID:   getEnv("PRACTICE_ID", ""),
		PracticeName: getEnv("PRACTICE_NAME", "Harbor Veterinary"),

		PortalJWTSecret: getEnv("PORTAL_JWT_SECRET", ""),

		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		EmailProbeWait: getEnvAsDuration("EMAIL_PROBE_WAIT", 500*time.Millisecond),

		DirectoryBaseURL: getEnv("DIRECTORY_BASE_URL", ""),
		DirectoryAPIKey:  getEnv("DIRECTORY_API_KEY", ""),

		PublicDirectoryBaseURL: getEnv("PUBLIC_DIRECTORY_BASE_URL", ""),

		GeocodeBaseURL:  getEnv("GEOCODE_BASE_URL", ""),
		GeocodeMinLevel: getEnv("GEOCODE_MIN_LEVEL", "street"),

		RoutingBaseURL: getEnv("ROUTING_BASE_URL", ""),
		RoutingAPIKey:  getEnv("ROUTING_API_KEY", ""),

		PublicBookBaseURL: getEnv("PUBLIC_BOOK_BASE_URL", ""),

		AvailabilityWindowDays: getEnvAsInt("AVAILABILITY_WINDOW_DAYS", 42),

		SubmissionURL:    getEnv("SUBMISSION_URL", ""),
		SubmissionAPIKey: getEnv("SUBMISSION_API_KEY", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Harbor Veterinary"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
