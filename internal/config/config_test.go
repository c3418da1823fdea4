package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
)

const sample = `
server:
  port: "9090"
log:
  level: debug
  format: json
redis:
  addr: localhost:6379
questions:
  ttl: 5m
  catalog:
    - id: q1
      text: How rested do you feel?
      category: energy
      weight: 1.5
      isActive: true
risk:
  low_min: 3.8
  medium_min: 2.2
alerts:
  score_drop_delta: 1.5
stats:
  window_days: 14
users:
  - id: m1
    name: Mia
    department: Engineering
    role: manager
    isActive: true
  - id: u1
    name: Ben
    department: Engineering
    managerId: m1
    role: employee
    isActive: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 14, cfg.Stats.WindowDays)
	assert.Equal(t, 1.5, cfg.Alerts.ScoreDropDelta)
	require.Len(t, cfg.Questions.Catalog, 1)
	assert.Equal(t, domain.Question{ID: "q1", Text: "How rested do you feel?", Category: "energy", Weight: 1.5, IsActive: true}, cfg.Questions.Catalog[0])
	require.Len(t, cfg.Users, 2)
	assert.Equal(t, domain.RoleManager, cfg.Users[0].Role)
	assert.Equal(t, "m1", cfg.Users[1].ManagerID)

	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, scoring.Thresholds{LowMin: 3.8, MediumMin: 2.2}, th)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("POSTGRES_URL", "postgres://db/weather")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "postgres://db/weather", cfg.Postgres.URL)
	assert.Equal(t, 2, cfg.Redis.DB)

	t.Setenv("REDIS_DB", "two")
	_, err = Load(writeConfig(t, sample))
	assert.Error(t, err)
}

func TestThresholds(t *testing.T) {
	var cfg Config
	th, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultThresholds, th)

	cfg.Risk = scoring.Thresholds{LowMin: 2, MediumMin: 3}
	_, err = cfg.Thresholds()
	assert.Error(t, err)
}

func TestTTLDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, TTLDuration("5m", time.Second))
	assert.Equal(t, time.Second, TTLDuration("", time.Second))
	assert.Equal(t, time.Second, TTLDuration("soon", time.Second))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
