package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriflow/bnpl-api/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  name: test-api
  environment: test
server:
  port: 9090
database:
  path: ":memory:"
logging:
  level: debug
  format: console
`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-api", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0:9090", config.ServerConfig{Host: "0.0.0.0", Port: 9090}.Addr())
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: defaults-api
`)

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/bnpl.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Webhooks.TimeoutSeconds)
}

func TestLoadFromFile_InvalidLevel(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: shouting
`)

	_, err := config.LoadFromFile(path)
	assert.Error(t, err)
}
