package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	defaultJWTSecret = "sphinx_landscapes_secret_key"
)

type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Storage  StorageConfig
	Company  CompanyConfig
	Digest   DigestConfig
	Seed     SeedConfig
}

type ServerConfig struct {
	Port         string
	ClientURL    string
	CookieSecure bool
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type EmailConfig struct {
	Provider       string // log, resend, sendgrid, ses
	From           string
	FromName       string
	AdminEmail     string
	ResendAPIKey   string
	SendGridAPIKey string
	AWS            AWSConfig
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type StorageConfig struct {
	Driver      string // local, s3
	UploadDir   string
	MaxFileSize int64
	Bucket      string
	Endpoint    string
	PublicURL   string
	AWS         AWSConfig
}

type CompanyConfig struct {
	Name  string
	Phone string
}

type DigestConfig struct {
	Schedule string
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Error reports a missing or invalid configuration key.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s %s", e.Key, e.Reason)
}

// Load reads .env (if present) and the process environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", EnvDevelopment)
	production := env == EnvProduction

	expires, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "168h"))
	if err != nil {
		return nil, &Error{Key: "JWT_EXPIRES_IN", Reason: "is not a valid duration"}
	}
	maxMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "5"))
	if err != nil {
		return nil, &Error{Key: "MAX_UPLOAD_MB", Reason: "is not a number"}
	}

	aws := AWSConfig{
		Region:          getEnv("AWS_REGION", "us-east-1"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && !production {
		dbURL = "sqlite://sphinx.db"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" && !production {
		secret = defaultJWTSecret
	}

	cfg := &Config{
		Env:      env,
		LogLevel: getEnv("LOG_LEVEL", defaultLogLevel(env)),
		Server: ServerConfig{
			Port:         getEnv("PORT", "4000"),
			ClientURL:    getEnv("CLIENT_URL", "http://localhost:4200"),
			CookieSecure: getBool("COOKIE_SECURE", production),
		},
		Database: DatabaseConfig{URL: dbURL},
		JWT:      JWTConfig{Secret: secret, ExpiresIn: expires},
		Email: EmailConfig{
			Provider:       strings.ToLower(getEnv("EMAIL_PROVIDER", "log")),
			From:           getEnv("EMAIL_FROM", "no-reply@sphinxlandscapes.com"),
			FromName:       getEnv("EMAIL_FROM_NAME", "Sphinx Landscapes"),
			AdminEmail:     getEnv("ADMIN_EMAIL", "admin@sphinxlandscapes.com"),
			ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			AWS:            aws,
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
			MaxFileSize: int64(maxMB) * 1024 * 1024,
			Bucket:      os.Getenv("S3_BUCKET"),
			Endpoint:    os.Getenv("S3_ENDPOINT"),
			PublicURL:   os.Getenv("S3_PUBLIC_URL"),
			AWS:         aws,
		},
		Company: CompanyConfig{
			Name:  getEnv("COMPANY_NAME", "Sphinx Landscapes"),
			Phone: getEnv("COMPANY_PHONE", "(555) 123-4567"),
		},
		Digest: DigestConfig{Schedule: digestSchedule()},
		Seed: SeedConfig{
			AdminEmail:    os.Getenv("SEED_ADMIN_EMAIL"),
			AdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required keys and the keys of the selected providers.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return &Error{Key: "APP_ENV", Reason: "must be one of development, test, production"}
	}
	if c.Database.URL == "" {
		return &Error{Key: "DATABASE_URL", Reason: "is required"}
	}
	if c.JWT.Secret == "" {
		return &Error{Key: "JWT_SECRET", Reason: "is required"}
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		return &Error{Key: "JWT_SECRET", Reason: "must be at least 32 characters in production"}
	}
	if c.JWT.ExpiresIn <= 0 {
		return &Error{Key: "JWT_EXPIRES_IN", Reason: "must be positive"}
	}
	if c.Storage.MaxFileSize <= 0 {
		return &Error{Key: "MAX_UPLOAD_MB", Reason: "must be positive"}
	}

	switch c.Email.Provider {
	case "log":
	case "resend":
		if c.Email.ResendAPIKey == "" {
			return &Error{Key: "RESEND_API_KEY", Reason: "is required for the resend provider"}
		}
	case "sendgrid":
		if c.Email.SendGridAPIKey == "" {
			return &Error{Key: "SENDGRID_API_KEY", Reason: "is required for the sendgrid provider"}
		}
	case "ses":
		if c.Email.AWS.Region == "" {
			return &Error{Key: "AWS_REGION", Reason: "is required for the ses provider"}
		}
	default:
		return &Error{Key: "EMAIL_PROVIDER", Reason: "must be one of log, resend, sendgrid, ses"}
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.UploadDir == "" {
			return &Error{Key: "UPLOAD_DIR", Reason: "is required for local storage"}
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return &Error{Key: "S3_BUCKET", Reason: "is required for s3 storage"}
		}
		if c.Storage.PublicURL == "" {
			return &Error{Key: "S3_PUBLIC_URL", Reason: "is required for s3 storage"}
		}
	default:
		return &Error{Key: "STORAGE_DRIVER", Reason: "must be one of local, s3"}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func defaultLogLevel(env string) string {
	if env == EnvDevelopment {
		return "debug"
	}
	return "info"
}

// digestSchedule keeps an explicitly empty DIGEST_SCHEDULE, which disables the digest.
func digestSchedule() string {
	if value, ok := os.LookupEnv("DIGEST_SCHEDULE"); ok {
		return strings.TrimSpace(value)
	}
	return "0 8 * * *"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
