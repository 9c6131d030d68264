package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

const (
	// DefaultBucket is the bucket PRD files are written to.
	DefaultBucket = "prd-files"

	defaultMaxUploadSize    = "50MiB"
	defaultMaxExtractedSize = "200MiB"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// URL, when set, is used as-is and the discrete fields are ignored.
type DatabaseConfig struct {
	URL                string
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

// SupabaseConfig holds the two values the service cannot run without.
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
}

// StorageConfig holds object storage settings.
// Driver "s3" talks to an S3-compatible gateway through the AWS SDK; "minio" uses minio-go.
type StorageConfig struct {
	Driver       string
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	Bucket       string
	UseSSL       bool
	UsePathStyle bool
	CreateBucket bool
}

// UploadConfig bounds what the upload pipeline accepts.
type UploadConfig struct {
	MaxSize          string
	MaxExtractedSize string

	maxSizeBytes          int64
	maxExtractedSizeBytes int64
}

// MaxSizeBytes returns the parsed upload cap. Valid only after Validate.
func (u UploadConfig) MaxSizeBytes() int64 { return u.maxSizeBytes }

// MaxExtractedSizeBytes returns the parsed cap on a decompressed archive entry.
func (u UploadConfig) MaxExtractedSizeBytes() int64 { return u.maxExtractedSizeBytes }

// LogConfig controls structured logging.
type LogConfig struct {
	Level    string
	Timezone string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port     string
	Supabase SupabaseConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Log      LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	serviceKey := getEnv("SUPABASE_SERVICE_ROLE_KEY", "")

	cfg := &AppConfig{
		Port: getEnv("PORT", "8080"),
		Supabase: SupabaseConfig{
			URL:            supabaseURL,
			ServiceRoleKey: serviceKey,
		},
		Storage: StorageConfig{
			Driver:       strings.ToLower(getEnv("STORAGE_DRIVER", "s3")),
			Endpoint:     getEnv("STORAGE_ENDPOINT", ""),
			Region:       getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey:    getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:    getEnv("STORAGE_SECRET_KEY", ""),
			SessionToken: getEnv("STORAGE_SESSION_TOKEN", ""),
			Bucket:       getEnv("STORAGE_BUCKET", DefaultBucket),
			UseSSL:       getEnvBool("STORAGE_USE_SSL", true),
			UsePathStyle: getEnvBool("STORAGE_USE_PATH_STYLE", true),
			CreateBucket: getEnvBool("STORAGE_CREATE_BUCKET", false),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
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
		Upload: UploadConfig{
			MaxSize:          getEnv("UPLOAD_MAX_SIZE", defaultMaxUploadSize),
			MaxExtractedSize: getEnv("UPLOAD_MAX_EXTRACTED_SIZE", defaultMaxExtractedSize),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Timezone: getEnv("LOG_TIMEZONE", "UTC"),
		},
	}

	// Supabase exposes an S3-compatible gateway under the project URL and accepts
	// the service credential as the session token.
	if cfg.Storage.Driver == "s3" {
		if cfg.Storage.Endpoint == "" && supabaseURL != "" {
			cfg.Storage.Endpoint = supabaseURL + "/storage/v1/s3"
		}
		if cfg.Storage.SessionToken == "" {
			cfg.Storage.SessionToken = serviceKey
		}
	}

	return cfg
}

// Validate fails fast on configuration the service cannot start with and
// parses the human-readable upload limits. Every problem is reported in one joined error.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Supabase.ServiceRoleKey == "" {
		errs = append(errs, errors.New("SUPABASE_SERVICE_ROLE_KEY is required"))
	}
	if c.Storage.Driver != "s3" && c.Storage.Driver != "minio" {
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q (use s3 or minio)", c.Storage.Driver))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("STORAGE_BUCKET must not be empty"))
	}
	if c.Storage.Endpoint == "" {
		errs = append(errs, errors.New("STORAGE_ENDPOINT is required"))
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		errs = append(errs, errors.New("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required"))
	}
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.User == "" || c.Database.Name == "") {
		errs = append(errs, errors.New("DATABASE_URL or DB_HOST, DB_USER and DB_NAME are required"))
	}

	size, err := parseSize(c.Upload.MaxSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid UPLOAD_MAX_SIZE: %w", err))
	}
	c.Upload.maxSizeBytes = size

	extracted, err := parseSize(c.Upload.MaxExtractedSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid UPLOAD_MAX_EXTRACTED_SIZE: %w", err))
	}
	c.Upload.maxExtractedSizeBytes = extracted

	return errors.Join(errs...)
}

// parseSize accepts binary sizes such as "50MiB" or "50MB" (both 52428800 bytes).
func parseSize(s string) (int64, error) {
	size, err := units.RAMInBytes(s)
	if err != nil {
		return 0, err
	}
	if size <= 0 {
		return 0, fmt.Errorf("size must be positive, got %q", s)
	}
	return size, nil
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
