// Package config builds the process configuration once at startup. Services
// receive it by reference instead of reading the environment themselves.
package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultPort           = "8000"
	defaultDBPath         = "./pokewealth.db"
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultPricingBaseURL = "https://www.pokemonpricetracker.com/api/v2"
	defaultDailyLimit     = 200
)

type Config struct {
	Port   string
	DBPath string

	// Gemini vision service
	GeminiAPIKey string
	GeminiModel  string

	// Pokemon Price Tracker API. An empty key is valid: lookups then
	// degrade to the AI estimate path.
	PricingAPIKey     string
	PricingBaseURL    string
	PricingDailyLimit int

	CORSAllowedOrigins []string
}

// Load reads the configuration from the environment. Call godotenv.Load
// before this so a local .env file is honored.
func Load() *Config {
	cfg := &Config{
		Port:               envOr("PORT", defaultPort),
		DBPath:             envOr("DB_PATH", defaultDBPath),
		GeminiAPIKey:       geminiKey(),
		GeminiModel:        envOr("GEMINI_MODEL", defaultGeminiModel),
		PricingAPIKey:      os.Getenv("POKEMON_API_KEY"),
		PricingBaseURL:     envOr("POKEMON_API_BASE_URL", defaultPricingBaseURL),
		PricingDailyLimit:  defaultDailyLimit,
		CORSAllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}

	if limitStr := os.Getenv("POKEMON_API_DAILY_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			cfg.PricingDailyLimit = limit
		}
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORSAllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	return cfg
}

// geminiKey reads the API key from the environment, falling back to a key
// file for deployments that mount secrets on disk.
func geminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	if keyPath := os.Getenv("GEMINI_API_KEY_FILE"); keyPath != "" {
		if data, err := os.ReadFile(keyPath); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
