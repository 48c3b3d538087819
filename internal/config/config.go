package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AssetConfig holds the valuation-specific settings: defaults used by the sanitizer and
// formatter, the metadata key namespace and presentation options for the table.
type AssetConfig struct {
	MetaPrefix         string
	DefaultLanguage    string
	DefaultCurrency    string
	Formatter          string // "locale" or "symbol"
	DateFormat         string // Go time layout
	ThumbnailURLTTLSec int
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string
	// WriteScope is the scope a token must carry to create assets.
	WriteScope string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	LogLevel string
	// Timezone is an IANA zone name used for log timestamps and table dates.
	Timezone string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Asset    AssetConfig
	Auth     AuthConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Asset: AssetConfig{
			MetaPrefix:         getEnv("META_PREFIX", "_aiav_"),
			DefaultLanguage:    strings.ToLower(getEnv("DEFAULT_LANGUAGE", "en")),
			DefaultCurrency:    strings.ToUpper(getEnv("DEFAULT_CURRENCY", "GBP")),
			Formatter:          getEnv("FORMATTER", "locale"),
			DateFormat:         getEnv("DATE_FORMAT", "January 2, 2006"),
			ThumbnailURLTTLSec: getEnvInt("THUMBNAIL_URL_TTL_SEC", 3600),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			WriteScope: getEnv("JWT_WRITE_SCOPE", "assets:write"),
		},
	}
}

// Location resolves Timezone, falling back to UTC when the zone is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
