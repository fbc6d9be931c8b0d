// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the digitest server.
type Config struct {
	Environment    string        `env:"APP_ENV" envDefault:"development"`
	Port           int           `env:"PORT" envDefault:"3000"`
	AffiliateCode  string        `env:"AFFILIATE_CODE" envDefault:"0rfpRaHuZeFMjdsyM5hasGNd7ZgqdRLk"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	SigningSecret  string        `env:"SIGNING_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
	VerifyDelay    time.Duration `env:"VERIFY_DELAY" envDefault:"1s"`
	DataDir        string        `env:"DATA_DIR" envDefault:"./data"`
	TLSCert        string        `env:"TLS_CERT"`
	TLSKey         string        `env:"TLS_KEY"`
}

// Load parses configuration from the environment. When ALLOWED_ORIGINS is
// not set, an environment-appropriate default allow-list is applied.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = DefaultOrigins(cfg.Environment)
	}
	return cfg, nil
}

// Production reports whether the server runs with production hardening
// (security headers, suppressed internal error detail).
func (c Config) Production() bool {
	return c.Environment == "production"
}

// DefaultOrigins returns the built-in allow-list for the given environment.
// Production covers the known deployment domains plus a wildcard for
// preview deployments; development covers local servers and file:// pages.
func DefaultOrigins(environment string) []string {
	if environment == "production" {
		return []string{
			"https://digitmatchstars-two.vercel.app",
			"https://derivmatchstarsbot.vercel.app",
			"https://digitmatch-pro.vercel.app",
			"https://digitmatchpro.vercel.app",
			"https://*.vercel.app",
		}
	}
	return []string{
		"http://localhost:3000",
		"http://localhost:8000",
		"http://localhost:8080",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8000",
		"http://127.0.0.1:8080",
		"file://",
	}
}
