package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("file values with defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  port: "9090"
jwt:
  secret: file-secret
rating:
  cooldown: 72h
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "file-secret", cfg.JWT.Secret)
		assert.Equal(t, "72h", cfg.Rating.Cooldown)
		assert.Equal(t, "Asia/Seoul", cfg.Server.Timezone)
		assert.Equal(t, "mentorlink", cfg.Database.DBName)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: file-secret\n")
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("DB_MAX_OPEN_CONNS", "42")
		t.Setenv("DB_USE_IN_MEMORY", "yes")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "env-secret", cfg.JWT.Secret)
		assert.Equal(t, 42, cfg.Database.MaxOpenConns)
		assert.True(t, cfg.Database.UseInMemory)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers())
	})

	t.Run("missing secret", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret")
	})

	t.Run("bad cooldown", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: s\nrating:\n  cooldown: soon\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("bad timezone", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: s\nserver:\n  timezone: Mars/Olympus\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
	})

	t.Run("bad integer env", func(t *testing.T) {
		path := writeConfig(t, "jwt:\n  secret: s\n")
		t.Setenv("DB_MAX_IDLE_CONNS", "many")
		_, err := LoadConfig(path)
		require.Error(t, err)
	})
}

func TestOrigins(t *testing.T) {
	cfg := &Config{}
	cfg.Server.AllowedOrigins = "https://a.example, ,https://b.example"
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}
