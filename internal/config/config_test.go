package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "notary-data", config.DataDir)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, uint32(0), config.Difficulty)
	assert.Equal(t, 0, config.MinimumFreeGB)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `dataDir: /var/lib/notary
difficulty: 12
minimumFreeGB: 5
logLevel: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/notary", config.DataDir)
	assert.Equal(t, uint32(12), config.Difficulty)
	assert.Equal(t, 5, config.MinimumFreeGB)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("difficulty: 4\n"), 0o644))

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "notary-data", config.DataDir)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, uint32(4), config.Difficulty)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_InvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataDir: [broken"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing config file")
}
