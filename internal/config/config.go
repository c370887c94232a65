package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	Timezone           string
	CORSAllowedOrigins []string
	RandomSeed         uint64

	// Mail delivery
	MailProvider     string
	MailSenderEmail  string
	MailSenderName   string
	MailReplyTo      string
	MailSecretName   string
	SecretStore      string
	AdminNotifyEmail string
	BrandName        string

	// Circuit breaker around the mail API
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration

	// AWS (Secrets Manager, SES, SQS)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	BookingQueueURL     string
	BookingQueueKind    string
	WorkerPollWait      time.Duration

	// Redis delivery dedupe
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	DedupeTTL     time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("TIMEZONE", "Local"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RandomSeed:         uint64(getEnvAsInt("RANDOM_SEED", 0)),

		MailProvider:     strings.ToLower(strings.TrimSpace(getEnv("MAIL_PROVIDER", "stub"))),
		MailSenderEmail:  getEnv("MAIL_SENDER_EMAIL", "info@spacesquare.dev"),
		MailSenderName:   getEnv("MAIL_SENDER_NAME", "Bläz Booking System"),
		MailReplyTo:      getEnv("MAIL_REPLY_TO", ""),
		MailSecretName:   getEnv("MAIL_SECRET_NAME", "mail/credential"),
		SecretStore:      strings.ToLower(strings.TrimSpace(getEnv("SECRET_STORE", "env"))),
		AdminNotifyEmail: getEnv("ADMIN_NOTIFY_EMAIL", ""),
		BrandName:        getEnv("BRAND_NAME", "Bläz Booth"),

		BreakerFailureThreshold: uint32(getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5)),
		BreakerOpenTimeout:      getEnvAsDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		BookingQueueURL:     getEnv("BOOKING_QUEUE_URL", ""),
		BookingQueueKind:    strings.ToLower(getEnv("BOOKING_QUEUE_KIND", "user")),
		WorkerPollWait:      getEnvAsDuration("WORKER_POLL_WAIT", 20*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		DedupeTTL:     getEnvAsDuration("DEDUPE_TTL", 24*time.Hour),
	}
}

// Location resolves the configured timezone, falling back to the process local zone.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
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

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
