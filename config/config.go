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

// Sign-in provider names exposed through Config.OAuth.
const (
	ProviderCredentials = "credentials"
	ProviderVK          = "vk"
)

// Verification store backends.
const (
	VerificationStoreDatabase = "database"
	VerificationStoreRedis    = "redis"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	SMTP         SMTPConfig
	OAuth        OAuthConfig
	S3           S3Config
	Verification VerificationConfig
	App          AppConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	URL             string // DATABASE_URL, takes precedence over the discrete fields
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// SMTPConfig describes the outgoing mail server. An empty Host switches the
// mailer into log-only mode.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// OAuthProvider is one enabled sign-in method.
type OAuthProvider struct {
	Name         string
	ClientID     string
	ClientSecret string
}

// OAuthConfig lists the sign-in providers enabled at startup.
type OAuthConfig struct {
	Providers []OAuthProvider
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CDN or public bucket URL
	Endpoint        string // S3-compatible endpoint, empty for AWS
}

type VerificationConfig struct {
	Store           string        // database or redis
	CodeTTL         time.Duration // validity window of issued codes
	Retention       time.Duration // how long redis keeps expired codes around so expiry stays observable
	CleanupSchedule string        // cron spec for purging expired codes
}

type AppConfig struct {
	Name      string
	PublicURL string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "portal"),
			Password:        getEnv("DB_PASSWORD", "portal"),
			DBName:          getEnv("DB_NAME", "volunteer_portal"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    parseInt(getEnv("DB_MAX_IDLE_CONNS", "10"), 10),
			MaxOpenConns:    parseInt(getEnv("DB_MAX_OPEN_CONNS", "50"), 50),
			ConnMaxLifetime: parseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"), 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "720h"), 720*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("EMAIL_SERVER_HOST", ""),
			Port:     parseInt(getEnv("EMAIL_SERVER_PORT", "587"), 587),
			User:     getEnv("EMAIL_SERVER_USER", ""),
			Password: getEnv("EMAIL_SERVER_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "noreply@volunteers.local"),
		},
		OAuth: OAuthConfig{
			Providers: enabledProviders(os.Getenv("VK_CLIENT_ID"), os.Getenv("VK_CLIENT_SECRET")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ru-central1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "volunteer-portal-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
		Verification: VerificationConfig{
			Store:           getEnv("VERIFICATION_STORE", VerificationStoreDatabase),
			CodeTTL:         parseDuration(getEnv("VERIFICATION_CODE_TTL", "15m"), 15*time.Minute),
			Retention:       parseDuration(getEnv("VERIFICATION_RETENTION", "1h"), time.Hour),
			CleanupSchedule: getEnv("VERIFICATION_CLEANUP_SCHEDULE", "*/10 * * * *"),
		},
		App: AppConfig{
			Name:      getEnv("APP_NAME", "Волонтерский Портал Росатома"),
			PublicURL: getEnv("APP_PUBLIC_URL", "http://localhost:3000"),
		},
	}

	switch config.Verification.Store {
	case VerificationStoreDatabase, VerificationStoreRedis:
	default:
		return nil, fmt.Errorf("unknown VERIFICATION_STORE %q", config.Verification.Store)
	}

	return config, nil
}

// enabledProviders assembles the provider list once; VK joins only when both
// of its credentials are present.
func enabledProviders(vkClientID, vkClientSecret string) []OAuthProvider {
	providers := []OAuthProvider{{Name: ProviderCredentials}}
	if vkClientID != "" && vkClientSecret != "" {
		providers = append(providers, OAuthProvider{
			Name:         ProviderVK,
			ClientID:     vkClientID,
			ClientSecret: vkClientSecret,
		})
	}
	return providers
}

// Enabled reports whether the named provider was configured.
func (c OAuthConfig) Enabled(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Get returns the named provider.
func (c OAuthConfig) Get(name string) (OAuthProvider, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return OAuthProvider{}, false
}

// Names lists enabled provider names in registration order.
func (c OAuthConfig) Names() []string {
	names := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		names = append(names, p.Name)
	}
	return names
}

func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
