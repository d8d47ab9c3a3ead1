package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Push      PushConfig
	Proximity ProximityConfig
	Heading   HeadingConfig
	Weather   WeatherConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string
	GinMode         string
	CORS            CORSConfig
	UserEmailDomain string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds the connection configuration for the heading-session
// mirror, dedup ledger, WQS cache, and group-position snapshot.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// PushConfig holds the Web Push VAPID keypair. If PublicKey/PrivateKey are
// empty, the push outbox journals notifications but never attempts delivery
// (spec.md §6 Environment Variables).
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	ContactEmail    string
}

// Enabled reports whether push delivery (beyond journaling) is configured.
func (p PushConfig) Enabled() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

// ProximityConfig holds the proximity alert engine's tunable parameters.
// Defaults match spec.md §4.F and §6; all are overridable at startup.
type ProximityConfig struct {
	BaselineRadiusMeters float64
	HotspotBonusMeters   float64
	CooldownMinutes      int
}

// HeadingConfig holds default view-cone parameters for new heading sessions.
type HeadingConfig struct {
	DefaultApertureDegrees float64
	DefaultRangeMeters     float64
}

// WeatherConfig holds the external wind provider configuration.
type WeatherConfig struct {
	ProviderBaseURL string
}

// RateLimitConfig holds the per-IP token bucket applied to the API group.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load reads configuration from the environment (and an optional .env file).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			GinMode:         getEnv("GIN_MODE", "release"),
			UserEmailDomain: getEnv("USER_EMAIL_DOMAIN", "huntiq.app"),
			CORS: CORSConfig{
				AllowOrigins:     []string{"*"},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
				ExposeHeaders:    []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 50),
		},
		Push: PushConfig{
			VAPIDPublicKey:  getEnv("PUSH_VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: getEnv("PUSH_VAPID_PRIVATE_KEY", ""),
			ContactEmail:    getEnv("PUSH_CONTACT_EMAIL", ""),
		},
		Proximity: ProximityConfig{
			BaselineRadiusMeters: getEnvAsFloat("PROXIMITY_BASELINE_RADIUS_M", 500),
			HotspotBonusMeters:   getEnvAsFloat("PROXIMITY_HOTSPOT_BONUS_M", 200),
			CooldownMinutes:      getEnvAsInt("PROXIMITY_COOLDOWN_MINUTES", 30),
		},
		Heading: HeadingConfig{
			DefaultApertureDegrees: getEnvAsFloat("HEADING_DEFAULT_APERTURE_DEG", 60),
			DefaultRangeMeters:     getEnvAsFloat("HEADING_DEFAULT_RANGE_M", 500),
		},
		Weather: WeatherConfig{
			ProviderBaseURL: getEnv("WEATHER_PROVIDER_BASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present. Startup must
// fail fast if the database URL/name are missing (spec.md §6).
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Address returns the Redis address; a thin accessor kept for symmetry with
// DatabaseConfig.ConnectionString.
func (c RedisConfig) Address() string { return c.Addr }

// Helper functions

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
		return defaultValue
	}
	return value
}
