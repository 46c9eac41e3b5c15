package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// DefaultMismatchDelay is how long a mismatched pair stays visible.
const DefaultMismatchDelay = 800 * time.Millisecond

type Config struct {
	Port         string
	LogLevel     string
	LogPretty    bool
	ClientOrigin string
	Production   bool

	// Table access tokens
	TableSecret string
	TokenTTL    time.Duration

	// Gameplay
	MismatchDelay time.Duration
	TableIdleTTL  time.Duration
	IconsFile     string
	DailySalt     string
}

// Load reads .env (if present) and then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	secret := os.Getenv("TABLE_SECRET")
	if secret == "" {
		secret = "dev_secret_change_me"
	}

	return &Config{
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     envBool("LOG_PRETTY", false),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:    os.Getenv("NODE_ENV") == "production",
		TableSecret:   secret,
		TokenTTL:      time.Duration(envInt("TABLE_TOKEN_HOURS", 24)) * time.Hour,
		MismatchDelay: time.Duration(envInt("MISMATCH_DELAY_MS", int(DefaultMismatchDelay/time.Millisecond))) * time.Millisecond,
		TableIdleTTL:  time.Duration(envInt("TABLE_IDLE_TTL_MIN", 60)) * time.Minute,
		IconsFile:     os.Getenv("ICONS_FILE"),
		DailySalt:     getEnv("DAILY_SALT", "local_dev_salt"),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses a positive integer; anything else falls back to def.
func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", k).Str("value", v).Int("default", def).Msg("invalid number, using default")
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
