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
	defaultPort        = "8080"
	defaultDatabaseURL = "keymaster.db"
	defaultSessionTTL  = "24h"
	defaultVerifyWait  = "45s"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Host session cookie.
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	// Gemini.
	GeminiAPIKey string
	TextModel    string
	TTSModel     string
	TTSVoice     string

	// Upper bound on a background identity-verification call before its
	// outcome is recorded as an error.
	VerifyTimeout time.Duration
}

// Load reads configuration from the environment, after loading .env if one
// is present. SESSION_SECRET and GEMINI_API_KEY have no defaults and must
// be set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", defaultPort),
		DatabaseURL:   getEnv("DATABASE_URL", defaultDatabaseURL),
		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		GeminiAPIKey:  strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		TextModel:     getEnv("GEMINI_TEXT_MODEL", ""),
		TTSModel:      getEnv("GEMINI_TTS_MODEL", ""),
		TTSVoice:      getEnv("GEMINI_TTS_VOICE", ""),
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is empty")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	var err error
	cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL)
	if err != nil {
		return nil, err
	}
	cfg.VerifyTimeout, err = parseDurationEnv("VERIFY_TIMEOUT", defaultVerifyWait)
	if err != nil {
		return nil, err
	}

	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", "false")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return d, nil
}

func parseBoolEnv(key, fallback string) bool {
	b, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false
	}
	return b
}
