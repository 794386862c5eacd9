package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Nil(t, cfg.Run.Namespace)
	require.Nil(t, cfg.Run.Legacy)
}

func TestLoadConfigRunSection(t *testing.T) {
	path := writeConfig(t, `
[run]
namespace = "data-count-"
root-margin = 2.5
threshold = 0.25
legacy = true
locale = "de"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "data-count-", *cfg.Run.Namespace)
	require.Equal(t, 2.5, *cfg.Run.RootMargin)
	require.Equal(t, 0.25, *cfg.Run.Threshold)
	require.True(t, *cfg.Run.Legacy)
	require.Equal(t, "de", *cfg.Run.Locale)
	require.Nil(t, cfg.Run.Marker)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[run]\nspeed = 3\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "run.speed")
}

func TestLoadConfigRejectsBadThreshold(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[run]\nthreshold = 2\n"))
	require.Error(t, err)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	require.Equal(t, filepath.Join("/cfg", "tickup", "config.toml"), DefaultConfigPath())
	require.Equal(t, filepath.Join("/data", "tickup", "tickup.db"), DefaultDBPath())
	require.Equal(t, filepath.Join("/data", "tickup", "tickup.log"), DefaultLogPath())
}
