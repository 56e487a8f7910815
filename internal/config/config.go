package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string // Metrics listener port, empty disables /metrics
	SQLitePath      string
	GroupID         string
	BotPhone        string
	ReplyDelayMinMs int  // Minimum delay before reply (milliseconds)
	ReplyDelayMaxMs int  // Maximum delay before reply (milliseconds), 0 = use min as fixed
	ShowTyping      bool // Show typing indicator during delay

	Timezone      string
	Location      *time.Location // Zone that decides where days, weeks and months begin
	ResetSchedule string         // Cron schedule for the recurring todo reset

	LogLevel string
	LogFile  string

	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
}

// Load reads configuration from the environment, after merging in a .env
// file when one exists.
func Load() (Config, error) {
	loaded := godotenv.Load() == nil

	cfg := Config{
		Port:            getenv("PORT", ""),
		SQLitePath:      getenv("SQLITE_PATH", "./data/whatsapp.db"),
		GroupID:         getenv("GROUP_ID", ""),
		BotPhone:        getenv("BOT_PHONE", ""),
		ReplyDelayMinMs: getenvInt("REPLY_DELAY_MIN_MS", 0),
		ReplyDelayMaxMs: getenvInt("REPLY_DELAY_MAX_MS", 0),
		ShowTyping:      getenvBool("SHOW_TYPING", false),
		Timezone:        getenv("TIMEZONE", "UTC"),
		ResetSchedule:   getenv("RESET_SCHEDULE", "@midnight"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFile:         getenv("LOG_FILE", ""),
		EnvFileLoaded:   loaded,
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.ReplyDelayMinMs < 0 || cfg.ReplyDelayMaxMs < 0 {
		return cfg, fmt.Errorf("reply delays must not be negative")
	}

	return cfg, nil
}

// ReplyDelay picks the delay before a reply. rnd returns a value in [0, n).
func (c Config) ReplyDelay(rnd func(n int) int) time.Duration {
	delayMs := c.ReplyDelayMinMs
	if c.ReplyDelayMaxMs > c.ReplyDelayMinMs {
		delayMs = c.ReplyDelayMinMs + rnd(c.ReplyDelayMaxMs-c.ReplyDelayMinMs+1)
	}
	return time.Duration(delayMs) * time.Millisecond
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
