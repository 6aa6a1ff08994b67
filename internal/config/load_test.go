package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("TASKS_DATABASE_URL", "postgres://localhost:5432/tasks_test")

	cfg, err := Load()
	require.NoError(t, err)

	// Defaults apply where nothing was configured
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/tasks_test", cfg.Database.URL)

	// Environment overrides defaults
	t.Setenv("TASKS_SERVER_PORT", "9090")
	t.Setenv("TASKS_SERVER_LOG_LEVEL", "debug")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	// Missing database URL fails validation
	t.Setenv("TASKS_DATABASE_URL", "")
	_, err := Load()
	assert.Error(t, err)

	// Out-of-range port fails validation
	t.Setenv("TASKS_DATABASE_URL", "postgres://localhost:5432/tasks_test")
	t.Setenv("TASKS_SERVER_PORT", "70000")
	_, err = Load()
	assert.Error(t, err)

	// Unknown log level fails validation
	t.Setenv("TASKS_SERVER_PORT", "8080")
	t.Setenv("TASKS_SERVER_LOG_LEVEL", "verbose")
	_, err = Load()
	assert.Error(t, err)
}
