package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points the config search at an empty directory so a developer's
// own molecules.yaml cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(EnvConfig, "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "Molecules", c.Window.Title)
	require.Equal(t, 640, c.Window.Width)
	require.Equal(t, 480, c.Window.Height)
	require.Equal(t, "scene.hcl", c.Scene.File)
	require.Equal(t, "info", c.Log.Level)
	require.Equal(t, "text", c.Log.Format)
	require.Equal(t, "screenshots", c.Screenshot.Dir)
	require.False(t, c.Debug)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
window:
  title: Lab
  width: 800
scene:
  file: lab.hcl
log:
  level: debug
  format: json
`), 0o644))
	t.Setenv("MOLECULE_WINDOW_HEIGHT", "600")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Lab", c.Window.Title)
	require.Equal(t, 800, c.Window.Width)
	require.Equal(t, 600, c.Window.Height)
	require.Equal(t, "lab.hcl", c.Scene.File)
	require.Equal(t, "debug", c.Log.Level)
	require.Equal(t, "json", c.Log.Format)
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "molecules.toml"), []byte(`
debug = true
[screenshot]
dir = "shots"
`), 0o644))

	c, err := Load("")
	require.NoError(t, err)
	require.True(t, c.Debug)
	require.Equal(t, "shots", c.Screenshot.Dir)
}

func TestLoad_ConfigEnvVar(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "env.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"script": "run.json"}`), 0o644))
	t.Setenv(EnvConfig, path)

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "run.json", c.Script)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("MOLECULE_LOG_FORMAT", "xml")
	_, err := Load("")
	require.ErrorContains(t, err, "log format")
}

func TestValidate(t *testing.T) {
	ok := Config{
		Window: WindowConfig{Width: 10, Height: 10},
		Log:    LogConfig{Level: "warn", Format: "json"},
	}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Window.Width = 0
	require.Error(t, bad.Validate())

	bad = ok
	bad.Log.Level = "trace"
	require.Error(t, bad.Validate())
}
