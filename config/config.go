// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// R2 holds Cloudflare R2 credentials. Uploads fall back to local disk when unset.
type R2 struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	Bucket          string `env:"BUCKET_NAME"`
	CDNBaseURL      string `env:"CDN_BASE_URL"`
}

// Enabled reports whether enough settings are present to talk to R2.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

type Config struct {
	Port           int      `env:"PORT" envDefault:"5200"`
	AppEnv         string   `env:"APP_ENV" envDefault:"production"`
	DatabaseURL    string   `env:"DATABASE_URL,required,notEmpty"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	BodyLimit      int      `env:"BODY_LIMIT" envDefault:"10485760"`
	UploadDir      string   `env:"UPLOAD_DIR" envDefault:"uploads"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"tournament-platform"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`

	// Requests per minute per IP on /api/auth; 0 disables the limiter.
	AuthRateLimit int `env:"AUTH_RATE_LIMIT" envDefault:"20"`

	StatusSyncInterval time.Duration `env:"STATUS_SYNC_INTERVAL" envDefault:"1m"`

	R2 R2 `envPrefix:"R2_"`

	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"tournament-platform"`
}

// IsDevelopment reports whether internal error details may be exposed.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.StatusSyncInterval <= 0 {
		return Config{}, fmt.Errorf("STATUS_SYNC_INTERVAL must be positive, got %s", cfg.StatusSyncInterval)
	}
	return cfg, nil
}
