package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
jwt:
  secret: test-secret
storage:
  type: minio
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 72*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 50, cfg.Gamification.StepPassXP)
	assert.Equal(t, 25, cfg.Gamification.FirstTryBonusXP)
	assert.InDelta(t, 0.7, cfg.Gamification.PassThreshold, 1e-9)
	assert.Equal(t, 3, cfg.Gamification.MaxCASRetries)
	assert.True(t, cfg.Gamification.DashboardCountsAsActivity)
	assert.Equal(t, 10*time.Second, cfg.RL.Timeout)
}

func TestLoadConfig_ClampsRLTimeout(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
storage:
  type: minio
rl:
  timeout_seconds: 120
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RL.Timeout)

	dir = writeConfig(t, `
database:
  driver: sqlite
storage:
  type: minio
rl:
  timeout_seconds: 1
`)
	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.RL.Timeout)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
  host: from-file
storage:
  type: minio
`)
	t.Setenv("DATABASE_HOST", "from-env")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Mode: "debug"},
			Database: DatabaseConfig{Driver: "mysql"},
			JWT:      JWTConfig{Secret: "short"},
			Gamification: GamificationConfig{
				StepPassXP:    50,
				PassThreshold: 0.7,
				MaxCASRetries: 3,
			},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Server.Mode = "release"
	assert.ErrorContains(t, cfg.Validate(), "JWT secret is too short")

	cfg = base()
	cfg.Database.Driver = "oracle"
	assert.ErrorContains(t, cfg.Validate(), "unsupported database driver")

	cfg = base()
	cfg.Gamification.PassThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.RL.Enabled = true
	assert.ErrorContains(t, cfg.Validate(), "rl.url")

	cfg = base()
	cfg.Gamification.MaxCASRetries = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Gamification.MaxCASRetries)
}
