package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	RealmURL    string // Required: base URL of the identity provider realm
	ClientID    string // Optional: OAuth client id (default: caseboard-dashboard)
	RedirectURI string // Optional: redirect target after login/logout (default: http://localhost:3000/)

	ProbeTimeout    time.Duration // Optional: provider reachability probe timeout (default: 3s)
	RefreshInterval time.Duration // Optional: token renewal cadence (default: 55s)

	DatabaseFile string // Optional: path to SQLite credential store (empty disables local accounts)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
}

func LoadConfig() Config {
	cfg := Config{
		RealmURL:        os.Getenv("SESSION_REALM_URL"),
		ClientID:        getEnvOrDefault("SESSION_CLIENT_ID", "caseboard-dashboard"),
		RedirectURI:     getEnvOrDefault("SESSION_REDIRECT_URI", "http://localhost:3000/"),
		ProbeTimeout:    getEnvDurationOrDefault("SESSION_PROBE_TIMEOUT", 3*time.Second),
		RefreshInterval: getEnvDurationOrDefault("SESSION_REFRESH_INTERVAL", 55*time.Second),
		DatabaseFile:    os.Getenv("SESSION_DATABASE_FILE"),
		PepperFile:      getEnvOrDefault("SESSION_PEPPER_FILE", "pepper"),
		Env:             getEnvOrDefault("ENV", "dev"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.RealmURL == "" {
		cfg.RealmURL = "http://localhost:8080/realms/caseboard"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
