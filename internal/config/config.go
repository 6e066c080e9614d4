package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const minJWTSecretBytes = 32

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Upload backends.
const (
	UploadLocal = "local"
	UploadS3    = "s3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int    `env:"PORT" envDefault:"5000"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DBDriver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DatabasePath  string `env:"DATABASE_PATH" envDefault:"./aurora.db"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"aurora"`

	JWTSecret    string        `env:"JWT_SECRET,required"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
	BcryptCost   int           `env:"BCRYPT_COST" envDefault:"10"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	Upload struct {
		Backend       string `env:"UPLOAD_BACKEND" envDefault:"local"`
		Dir           string `env:"UPLOAD_DIR" envDefault:"./uploads"`
		MaxBytes      int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
		PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:5000"`
	}

	S3 struct {
		Endpoint        string `env:"S3_ENDPOINT"`
		Region          string `env:"S3_REGION" envDefault:"us-east-1"`
		AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
		Bucket          string `env:"S3_BUCKET" envDefault:"aurora-images"`
		UseSSL          bool   `env:"S3_USE_SSL"`
		PublicURL       string `env:"S3_PUBLIC_URL"`
	}

	RabbitMQ struct {
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"aurora.posts"`
	}

	EventRetention     time.Duration `env:"EVENT_RETENTION" envDefault:"720h"`
	EventPruneSchedule string        `env:"EVENT_PRUNE_SCHEDULE" envDefault:"@daily"`
	StatsInterval      time.Duration `env:"STATS_INTERVAL" envDefault:"30s"`
}

// Load loads configuration from the environment, reading .env first when it exists.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values env tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < minJWTSecretBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretBytes)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return errors.New("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.Upload.Backend {
	case UploadLocal:
		if c.Upload.Dir == "" {
			return errors.New("UPLOAD_DIR is required for the local upload backend")
		}
	case UploadS3:
		if c.S3.Endpoint == "" || c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" || c.S3.Bucket == "" {
			return errors.New("S3_ENDPOINT, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY and S3_BUCKET must be set for the s3 upload backend")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_BACKEND %q", c.Upload.Backend)
	}

	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
