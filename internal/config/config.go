// Package config loads Pierre's deployment configuration from the
// environment, following the small-typed-sub-config style of Abraxas's
// pkg/config blended with mansoorceksport-metamorph's getEnv/Validate idiom.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config composes every sub-config spec.md §6's environment-variable list
// names.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AdminJWT  AdminJWTConfig
	OAuth     OAuthConfig
	SSE       SSEConfig
	Weather   WeatherConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
}

type ServerConfig struct {
	Port             string
	LogLevel         string
	LogFormat        string
	MCPTransport     string // "stdio" | "http"
	GracePeriod      time.Duration
	DevSamplingMode  string // "", "anthropic" — §DOMAIN STACK dev-only sampling fallback
	AnthropicAPIKey  string
}

type DatabaseConfig struct {
	Driver string // "postgres" | "sqlite"
	URL    string // postgres DSN
	Path   string // sqlite file path, default ./data/users.db
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

type JWTConfig struct {
	SigningKey      string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type AdminJWTConfig struct {
	SigningKey  string // seed for the RSA key used to sign admin JWTs when no PEM is supplied
	PrivateKeyPEM string
	Issuer      string
	TokenTTL    time.Duration
	RotateEvery time.Duration
}

type OAuthConfig struct {
	RedirectBaseURL    string
	StravaClientID     string
	StravaClientSecret string
	FitbitClientID     string
	FitbitClientSecret string
	StateTTL           time.Duration
	MasterEncryptionKey string // 32-byte key (base64 or raw) for AEAD token-at-rest encryption
}

type SSEConfig struct {
	OverflowPolicy     string // "drop_oldest" | "drop_new" | "close_connection"
	KeepaliveInterval  time.Duration
	SubscriberBuffer   int
	TaskGracePeriod    time.Duration
}

type WeatherConfig struct {
	APIKey  string
	Enabled bool
}

type RateLimitConfig struct {
	DefaultWindow   time.Duration
	StarterLimit    int
	ProfessionalLimit int
}

// EmailConfig governs the optional SES-backed approval-notification email
// (spec.md §4.8 approval workflow); when FromAddress is unset the
// composition root wires a no-op sender instead of touching AWS.
type EmailConfig struct {
	FromAddress string
	Enabled     bool
}

// Load reads configuration from environment variables, loading .env first in
// development. A missing .env is tolerated, not fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("HTTP_PORT", "8080"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			LogFormat:       getEnv("LOG_FORMAT", "console"),
			MCPTransport:    getEnv("MCP_TRANSPORT", "http"),
			GracePeriod:     getEnvDuration("SHUTDOWN_GRACE_PERIOD", 15*time.Second),
			DevSamplingMode: getEnv("PIERRE_DEV_SAMPLING_BACKEND", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DATABASE_DRIVER", "sqlite"),
			URL:    getEnv("DATABASE_URL", ""),
			Path:   getEnv("DATABASE_PATH", "./data/users.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvAsInt64("REDIS_DB", 0)),
			Enabled:  getEnv("REDIS_ADDR", "") != "",
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "pierre-dev-secret-change-in-production"),
			Issuer:          getEnv("JWT_ISSUER", "pierre"),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 1*time.Hour),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		AdminJWT: AdminJWTConfig{
			SigningKey:    getEnv("ADMIN_JWT_SIGNING_SEED", "pierre-admin-dev-seed-change-in-production"),
			PrivateKeyPEM: getEnv("ADMIN_JWT_PRIVATE_KEY_PEM", ""),
			Issuer:        getEnv("ADMIN_JWT_ISSUER", "pierre-admin"),
			TokenTTL:      getEnvDuration("ADMIN_JWT_TOKEN_TTL", 90*24*time.Hour),
			RotateEvery:   getEnvDuration("ADMIN_JWKS_ROTATE_EVERY", 30*24*time.Hour),
		},
		OAuth: OAuthConfig{
			RedirectBaseURL:     getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),
			StravaClientID:      getEnv("STRAVA_CLIENT_ID", ""),
			StravaClientSecret:  getEnv("STRAVA_CLIENT_SECRET", ""),
			FitbitClientID:      getEnv("FITBIT_CLIENT_ID", ""),
			FitbitClientSecret:  getEnv("FITBIT_CLIENT_SECRET", ""),
			StateTTL:            getEnvDuration("OAUTH_STATE_TTL", 10*time.Minute),
			MasterEncryptionKey: getEnv("MASTER_ENCRYPTION_KEY", ""),
		},
		SSE: SSEConfig{
			OverflowPolicy:    getEnv("SSE_OVERFLOW_POLICY", "drop_oldest"),
			KeepaliveInterval: getEnvDuration("SSE_KEEPALIVE_INTERVAL", 15*time.Second),
			SubscriberBuffer:  int(getEnvAsInt64("SSE_SUBSCRIBER_BUFFER", 32)),
			TaskGracePeriod:   getEnvDuration("SSE_TASK_GRACE_PERIOD", 30*time.Second),
		},
		Weather: WeatherConfig{
			APIKey:  getEnv("WEATHER_API_KEY", ""),
			Enabled: getEnv("WEATHER_API_KEY", "") != "",
		},
		RateLimit: RateLimitConfig{
			DefaultWindow:     getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", 1*time.Hour),
			StarterLimit:      int(getEnvAsInt64("RATE_LIMIT_STARTER", 100)),
			ProfessionalLimit: int(getEnvAsInt64("RATE_LIMIT_PROFESSIONAL", 1000)),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
			Enabled:     getEnv("EMAIL_FROM_ADDRESS", "") != "",
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration required for a functioning deployment
// is present. Missing provider credentials are tolerated (a tenant simply
// cannot connect that provider until an admin configures it); a missing
// encryption key is fatal because C1 cannot encrypt tokens at rest.
func (c *Config) Validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be 'postgres' or 'sqlite', got %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
	}
	if c.OAuth.MasterEncryptionKey == "" {
		return fmt.Errorf("MASTER_ENCRYPTION_KEY is required")
	}
	switch c.SSE.OverflowPolicy {
	case "drop_oldest", "drop_new", "close_connection":
	default:
		return fmt.Errorf("SSE_OVERFLOW_POLICY must be one of drop_oldest|drop_new|close_connection, got %q", c.SSE.OverflowPolicy)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return duration
}
