package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/hms")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SYMMETRIC_KEY", testKey)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8930", cfg.Port)
	assert.Equal(t, ":8930", cfg.Addr())
	assert.True(t, cfg.IsDev())
	assert.Equal(t, 40, cfg.DBMaxOpenConns)
	assert.Equal(t, "visit_events", cfg.VisitEventsQueue)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, "@every 5m", cfg.StatsRefreshCron)
	assert.Empty(t, cfg.AMQPURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.iq, https://b.iq")
	t.Setenv("RATE_LIMIT_RPS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, []string{"https://a.iq", "https://b.iq"}, cfg.CORSOrigins)
	assert.Equal(t, float64(50), cfg.RateLimitRPS)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_ShortSymmetricKey(t *testing.T) {
	setRequired(t)
	t.Setenv("SYMMETRIC_KEY", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "SYMMETRIC_KEY")
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_MissingFileIsSkipped(t *testing.T) {
	setRequired(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "8930", cfg.Port)
}

func TestLoadFile_ReadsValues(t *testing.T) {
	setRequired(t)
	path := writeEnvFile(t, "# local overrides\nSTATS_REFRESH_CRON=@every 1m\nVISIT_EVENTS_QUEUE=visits_local\n")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "@every 1m", cfg.StatsRefreshCron)
	assert.Equal(t, "visits_local", cfg.VisitEventsQueue)
}

func TestLoadFile_MalformedFileFails(t *testing.T) {
	setRequired(t)
	path := writeEnvFile(t, "PORT=9000\nthis is not a dotenv line\n")

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "read config")
}
