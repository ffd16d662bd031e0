package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ClientID      string
	ClientSecret  string
	CallbackURL   string
	DatabaseURL   string
	SessionSecret string
	FrontendURL   string
	Addr          string

	// Overridable so tests can point the client at a local server.
	StravaBaseURL string
	StravaAuthURL string

	// PreviewMode swaps the upstream client and the stats store for
	// canned stand-ins so the service can run without live credentials.
	PreviewMode bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on process environment")
	}

	cfg := &Config{
		ClientID:      os.Getenv("STRAVA_CLIENT_ID"),
		ClientSecret:  os.Getenv("STRAVA_CLIENT_SECRET"),
		CallbackURL:   os.Getenv("STRAVA_CALLBACK_URL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		FrontendURL:   getenv("FRONTEND_URL", "/"),
		Addr:          getenv("ADDR", ":9999"),
		StravaBaseURL: getenv("STRAVA_BASE_URL", "https://www.strava.com/api/v3"),
		StravaAuthURL: getenv("STRAVA_AUTH_URL", "https://www.strava.com"),
	}

	if v := os.Getenv("PREVIEW_MODE"); v != "" {
		preview, err := strconv.ParseBool(v)
		if err != nil {
			log.Fatalf("PREVIEW_MODE must be a boolean, got %q", v)
		}
		cfg.PreviewMode = preview
	}

	if cfg.SessionSecret == "" {
		log.Fatal("Environment variable SESSION_SECRET is required")
	}

	if !cfg.PreviewMode {
		if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.CallbackURL == "" || cfg.DatabaseURL == "" {
			log.Fatal("Environment variables (STRAVA_CLIENT_ID, STRAVA_CLIENT_SECRET, STRAVA_CALLBACK_URL, DATABASE_URL) are required")
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
