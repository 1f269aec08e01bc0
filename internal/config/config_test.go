package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join(dir, "healthai.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, "0 6 * * 1", cfg.Analytics.WeeklySchedule)
	assert.Equal(t, 24, cfg.Analytics.CacheTTLHours)
	assert.NotEmpty(t, cfg.Security.JWTSecret, "JWT secret is generated when unset")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "healthai.yaml")

	content := []byte("server:\n  port: 9090\nanalytics:\n  cache_ttl_hours: 6\n")
	require.NoError(t, os.WriteFile(path, content, 0600))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 6, cfg.Analytics.CacheTTLHours)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("HEALTHAI_SERVER_PORT", "3000")
	t.Setenv("HEALTHAI_LLM_API_KEY", "test-key")

	cfg, err := Load("", dir)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
}

func TestLoad_InvalidPort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "healthai.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 99999\n"), 0600))

	_, err := Load(path, dir)
	assert.Error(t, err)
}

func TestWriteStarter(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteStarter(dir, "hunter2")
	require.NoError(t, err)
	assert.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "admin_password: hunter2")
	assert.Contains(t, string(data), "weekly_schedule:")

	// Refuses to clobber an existing config
	_, err = WriteStarter(dir, "other")
	assert.Error(t, err)
}
