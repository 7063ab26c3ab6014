package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("FIXROUTE_AUTH__JWT_SECRET", "env-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTP.Addr)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "booking_events", cfg.RabbitMQ.Exchange)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Second, cfg.RankingTimeout())
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout())
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("FIXROUTE_AUTH__JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":8080"
ranking:
  url: "http://ranker:9000/predict"
  timeout_seconds: 2
auth:
  jwt_secret: "file-secret"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://ranker:9000/predict", cfg.Ranking.URL)
	assert.Equal(t, 2*time.Second, cfg.RankingTimeout())
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)

	// Sections the file does not set keep their defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: "db.internal"
auth:
  jwt_secret: "file-secret"
`), 0o600))

	t.Setenv("FIXROUTE_DATABASE__HOST", "db.override")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
