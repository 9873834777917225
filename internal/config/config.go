package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultScopes is requested when OAUTH_SCOPES is not set. The broker
// exists to hand out Drive appdata access tokens, so that is the default.
const DefaultScopes = "https://www.googleapis.com/auth/drive.appdata"

// DefaultSessionMaxAge bounds how long a stored refresh credential is
// considered usable. The store enforces it as a TTL.
const DefaultSessionMaxAge = 30 * 24 * time.Hour

type Config struct {
	AppPort string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OAuthScopes        []string

	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionMaxAge time.Duration
}

func Load() Config {

	cfg := Config{

		AppPort: getenv("PORT", "8080"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		OAuthScopes:        strings.Fields(getenv("OAUTH_SCOPES", DefaultScopes)),

		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		SessionMaxAge: getenvSeconds("SESSION_MAX_AGE", DefaultSessionMaxAge),
	}

	return cfg

}

// Validate checks the configuration once at startup. Nothing is
// re-validated per request.
func (c Config) Validate() error {
	var missing []string

	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.GoogleRedirectURL == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URL")
	}
	if c.AllowedOrigin == "" {
		missing = append(missing, "ALLOWED_ORIGIN")
	}

	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s",
			strings.Join(missing, ", "))
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("config: SESSION_MAX_AGE must be positive")
	}

	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}
