package config

import (
	"fmt"
	"log"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPort is used when the platform does not inject a PORT value.
const DefaultPort = 8080

// ConfigurationError reports an explicitly malformed configuration value.
// An absent value never produces one; defaults cover absence.
type ConfigurationError struct {
	Key   string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Key, e.Value)
}

// Config holds application configuration
type Config struct {
	Host        string
	Port        int
	Environment string

	JWTSecret     []byte
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string

	AllowedOrigins []string

	StorageBackend string
	DataDir        string
	S3Bucket       string
	S3Region       string
	RegistryFile   string
	InsightsFile   string

	RedisURL      string
	RedisPassword string

	ShutdownGrace     time.Duration
	TrustProxyHeaders bool
	EnableMetrics     bool
}

// Load reads configuration from the process environment. A .env file in the
// working directory is merged in first when present.
func Load() (*Config, error) {
	// Best effort; the container platform injects real env vars directly.
	_ = godotenv.Load()

	port, err := ResolvePort(os.Getenv("PORT"))
	if err != nil {
		return nil, err
	}

	environment := GetEnvOrDefault("APP_ENV", "development")

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		if environment == "production" {
			return nil, &ConfigurationError{Key: "SECRET_KEY", Value: "(empty)"}
		}
		secret = "change-me-in-production"
		log.Printf("Warning: SECRET_KEY not set, using insecure development default")
	}

	storageBackend := strings.ToLower(GetEnvOrDefault("STORAGE_BACKEND", "local"))
	switch storageBackend {
	case "local", "s3":
	default:
		return nil, &ConfigurationError{Key: "STORAGE_BACKEND", Value: storageBackend}
	}

	cfg := &Config{
		Host:        GetEnvOrDefault("BIND_HOST", "0.0.0.0"),
		Port:        port,
		Environment: environment,

		JWTSecret:     []byte(secret),
		TokenTTL:      time.Duration(GetEnvAsInt("TOKEN_TTL_MINUTES", 60*24)) * time.Minute,
		AdminUsername: GetEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: GetEnvOrDefault("ADMIN_PASSWORD", "changeme"),

		AllowedOrigins: GetEnvAsStringSlice("CORS_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:5174",
			"http://127.0.0.1:5173",
			"http://127.0.0.1:5174",
			"https://credocarbon.com",
			"https://www.credocarbon.com",
		}),

		StorageBackend: storageBackend,
		DataDir:        GetEnvOrDefault("DATA_DIR", "public/Data"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Region:       GetEnvOrDefault("S3_REGION", "us-east-1"),
		RegistryFile:   GetEnvOrDefault("REGISTRY_FILE", "registryData.json"),
		InsightsFile:   GetEnvOrDefault("INSIGHTS_FILE", "insightsData.json"),

		RedisURL:      normalizeRedisAddress(os.Getenv("REDIS_URL")),
		RedisPassword: resolveRedisPassword(os.Getenv("REDIS_URL"), os.Getenv("REDIS_PASSWORD")),

		ShutdownGrace:     time.Duration(GetEnvAsInt("SHUTDOWN_GRACE_SECONDS", 15)) * time.Second,
		TrustProxyHeaders: GetEnvAsBool("TRUST_PROXY_HEADERS", false),
		EnableMetrics:     GetEnvAsBool("ENABLE_METRICS", false),
	}

	if cfg.StorageBackend == "s3" && cfg.S3Bucket == "" {
		return nil, &ConfigurationError{Key: "S3_BUCKET", Value: "(empty)"}
	}

	return cfg, nil
}

// ResolvePort parses a PORT environment value. An empty value falls back to
// DefaultPort; anything that is not a positive decimal integer is rejected.
func ResolvePort(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultPort, nil
	}
	port, err := strconv.Atoi(trimmed)
	if err != nil || port <= 0 || port > 65535 {
		return 0, &ConfigurationError{Key: "PORT", Value: value}
	}
	return port, nil
}

// GetEnvOrDefault returns environment variable value or default
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvAsBool parses environment variable as boolean
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		value = strings.ToLower(value)
		if value == "true" || value == "1" || value == "yes" {
			return true
		}
		if value == "false" || value == "0" || value == "no" {
			return false
		}
	}
	return defaultValue
}

// GetEnvAsInt parses environment variable as integer
func GetEnvAsInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsStringSlice parses environment variable as comma-separated list
func GetEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultValue
}

// normalizeRedisAddress converts redis:// URLs into host[:port] that go-redis expects.
func normalizeRedisAddress(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.Contains(trimmed, "://") {
		return trimmed
	}
	u, err := neturl.Parse(trimmed)
	if err != nil {
		log.Printf("Warning: could not parse REDIS_URL '%s': %v", trimmed, err)
		return trimmed
	}
	if u.Host != "" {
		return u.Host
	}
	return trimmed
}

// resolveRedisPassword returns an explicit password if provided, otherwise pulls
// the password component from a redis:// URL when available.
func resolveRedisPassword(redisURL, explicit string) string {
	if explicit != "" {
		return explicit
	}
	trimmed := strings.TrimSpace(redisURL)
	if trimmed == "" || !strings.Contains(trimmed, "://") {
		return explicit
	}
	u, err := neturl.Parse(trimmed)
	if err != nil {
		return explicit
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok && pw != "" {
			return pw
		}
	}
	return explicit
}
