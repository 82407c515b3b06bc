package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all settings read from the environment at startup.
type Config struct {
	BotToken        string
	DatabaseURL     string // postgres connection string; empty means local sqlite
	DBType          string // "postgres" or "sqlite"
	YandexAPIKey    string // optional, examples lookup is disabled without it
	ReminderEnabled bool
	ImportFile      string // optional xlsx catalog imported at startup

	adminIDs map[int64]struct{}
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional: in production the variables come from the environment
	_ = godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is not set")
	}

	dbType := os.Getenv("DB_TYPE")
	databaseURL := os.Getenv("DATABASE_URL")
	if dbType == "" {
		if databaseURL != "" {
			dbType = "postgres"
		} else {
			dbType = "sqlite"
		}
	}

	cfg := &Config{
		BotToken:        token,
		DatabaseURL:     databaseURL,
		DBType:          dbType,
		YandexAPIKey:    os.Getenv("YA_DICTIONARY_API_KEY"),
		ReminderEnabled: os.Getenv("ENABLE_REMINDERS") != "false",
		ImportFile:      os.Getenv("PHRASES_XLSX"),
		adminIDs:        make(map[int64]struct{}),
	}

	// Admin membership is fixed for the lifetime of the process.
	for _, idStr := range strings.Split(os.Getenv("ADMIN_USER_IDS"), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin user ID %q: %v", idStr, err)
		}
		cfg.adminIDs[id] = struct{}{}
	}

	return cfg, nil
}

// IsAdmin reports whether the user is in the administrator set.
func (c *Config) IsAdmin(userID int64) bool {
	_, ok := c.adminIDs[userID]
	return ok
}
