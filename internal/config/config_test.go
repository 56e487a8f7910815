package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	// Run from a directory without a .env file.
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"PORT", "SQLITE_PATH", "GROUP_ID", "BOT_PHONE", "REPLY_DELAY_MIN_MS", "REPLY_DELAY_MAX_MS",
		"SHOW_TYPING", "TIMEZONE", "RESET_SCHEDULE", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data/whatsapp.db", cfg.SQLitePath)
	assert.Equal(t, "", cfg.Port)
	assert.Equal(t, "@midnight", cfg.ResetSchedule)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.False(t, cfg.ShowTyping)
	assert.False(t, cfg.EnvFileLoaded)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE", "Asia/Jakarta")
	t.Setenv("REPLY_DELAY_MIN_MS", "500")
	t.Setenv("REPLY_DELAY_MAX_MS", "1500")
	t.Setenv("SHOW_TYPING", "true")
	t.Setenv("RESET_SCHEDULE", "0 4 * * *")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Asia/Jakarta", cfg.Location.String())
	assert.Equal(t, 500, cfg.ReplyDelayMinMs)
	assert.Equal(t, 1500, cfg.ReplyDelayMaxMs)
	assert.True(t, cfg.ShowTyping)
	assert.Equal(t, "0 4 * * *", cfg.ResetSchedule)
	assert.Equal(t, "9090", cfg.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := Load()
	assert.ErrorContains(t, err, "TIMEZONE")

	clearEnv(t)
	t.Setenv("REPLY_DELAY_MIN_MS", "-5")
	_, err = Load()
	assert.Error(t, err)

	// Unparseable numbers fall back to defaults
	clearEnv(t)
	t.Setenv("REPLY_DELAY_MIN_MS", "soon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.ReplyDelayMinMs)
}

func TestReplyDelay(t *testing.T) {
	fixed := Config{ReplyDelayMinMs: 300}
	assert.Equal(t, 300*time.Millisecond, fixed.ReplyDelay(func(int) int { panic("not random") }))

	ranged := Config{ReplyDelayMinMs: 100, ReplyDelayMaxMs: 200}
	var gotN int
	d := ranged.ReplyDelay(func(n int) int { gotN = n; return n - 1 })
	assert.Equal(t, 101, gotN)
	assert.Equal(t, 200*time.Millisecond, d)

	assert.Zero(t, Config{}.ReplyDelay(nil))
}
