package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, "server:\n  listen: \":9000\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, "sqlite", cfg.Database.Backend)
	assert.Equal(t, "rfc3339", cfg.Tenancy.MetaDateTimeFormat)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	path := writeTempConfig(t, "database:\n  backend: oracle\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsUnknownMetaFormat(t *testing.T) {
	path := writeTempConfig(t, "tenancy:\n  metaDateTimeFormat: unix\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTempConfig(t, "server:\n  listen: \":8080\"\n")
	t.Setenv("SCIM_SERVER_LISTEN", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Listen)
}
