// Package config holds process configuration and the relay policy constants.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// Rate limiting
	RateLimitMessages = 5
	RateLimitWindow   = 2 * time.Second
	MuteDuration      = 60 * time.Second

	// Media groups
	MediaGroupFlushDelay = 2 * time.Second
)

// BadWords is the banned-term list applied to plain-text messages before relay.
var BadWords = []string{"badword1", "badword2", "spam", "scam"}

// Interests are the preset tags a user can search by. "Random" clears the tag.
var Interests = []string{"Anime", "Tech", "Gaming", "Movies", "Music", "Random"}

// Config carries everything read from the environment at startup.
type Config struct {
	BotToken    string
	DBType      string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresDSN string
	RedisAddr   string // optional; enables the shared rate-limit store
	HTTPAddr    string
	JWTSecret   string
	AdminIDs    []int64
}

// Load reads configuration from the environment. Call godotenv.Load first.
func Load() Config {
	cfg := Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DBType:      strings.ToLower(envOr("DB_TYPE", "sqlite")),
		SQLitePath:  envOr("SQLITE_PATH", "bot.db"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	for _, part := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			cfg.AdminIDs = append(cfg.AdminIDs, id)
		}
	}
	return cfg
}

// IsAdmin reports whether the given Telegram user ID is in the allowlist.
func (c Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
