package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reportzip/internal/config"
	"github.com/pders01/reportzip/internal/models"
)

func TestInitCreatesDefaultConfig(t *testing.T) {
	out := setupCommandTest(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	err := runInit(nil, []string{})
	require.NoError(t, err)

	configPath := filepath.Join(home, ".config", "reportzip", "config.toml")
	var cfg config.Config
	_, err = toml.DecodeFile(configPath, &cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("target", "cucumber-html-reports"), cfg.Archive.Source)
	assert.Equal(t, models.PolicyContinue, cfg.Archive.Policy)
	assert.Equal(t, -1, cfg.Archive.Level)
	assert.Contains(t, out.String(), "✓ Created default config")
}

func TestInitKeepsExistingConfig(t *testing.T) {
	out := setupCommandTest(t)
	dir := t.TempDir()
	cfgFile = filepath.Join(dir, "custom.toml")

	existing := "[archive]\nsource = \"reports\"\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(existing), 0644))

	err := runInit(nil, []string{})
	require.NoError(t, err)

	content, err := os.ReadFile(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, existing, string(content))
	assert.True(t, strings.HasPrefix(out.String(), "Config already exists"))
}

func TestInitCustomPath(t *testing.T) {
	setupCommandTest(t)
	cfgFile = filepath.Join(t.TempDir(), "nested", "reportzip.toml")

	require.NoError(t, runInit(nil, []string{}))
	_, err := os.Stat(cfgFile)
	require.NoError(t, err)
}
