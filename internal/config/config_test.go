package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[editor]
diagnostics-debounce-ms = 100
diagnostics-sweep-ms = 2000

[[language-server]]
name = "gopls"
command = "gopls"
args = ["serve"]
languages = ["go"]

[[language-server]]
name = "pyright"
command = "pyright-langserver"
args = ["--stdio"]
languages = ["python"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Editor.DebounceDelay())
	assert.Equal(t, 2*time.Second, cfg.Editor.SweepDelay())
	assert.Equal(t, time.Duration(0), cfg.Editor.RetryDelay())

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "gopls", cfg.Servers[0].Name)
	assert.Equal(t, []string{"serve"}, cfg.Servers[0].Args)
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Empty(t, cfg.Servers)
	assert.Equal(t, time.Duration(0), cfg.Editor.DebounceDelay())
}

func TestLoadRejectsInvalidToml(t *testing.T) {
	path := writeConfig(t, "[editor\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Config{Servers: []ServerConfig{{Command: "gopls"}}}.Validate())
	assert.Error(t, Config{Servers: []ServerConfig{{Name: "gopls"}}}.Validate())
	assert.Error(t, Config{Servers: []ServerConfig{
		{Name: "gopls", Command: "gopls"},
		{Name: "gopls", Command: "gopls"},
	}}.Validate())
	assert.NoError(t, Config{Servers: []ServerConfig{{Name: "gopls", Command: "gopls"}}}.Validate())
}

func TestServersForLanguage(t *testing.T) {
	cfg := Config{Servers: []ServerConfig{
		{Name: "gopls", Command: "gopls", Languages: []string{"go"}},
		{Name: "generic", Command: "generic-ls"},
		{Name: "pyright", Command: "pyright-langserver", Languages: []string{"python"}},
	}}

	matched := cfg.ServersForLanguage("go")
	require.Len(t, matched, 2)
	assert.Equal(t, "gopls", matched[0].Name)
	assert.Equal(t, "generic", matched[1].Name)
}

func TestProjectConfigFolderIsStablePerProject(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	first, err := ProjectConfigFolder("/work/project-a")
	require.NoError(t, err)
	second, err := ProjectConfigFolder("/work/project-a")
	require.NoError(t, err)
	other, err := ProjectConfigFolder("/work/project-b")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)

	info, err := os.Stat(first)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
