package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reportzip/internal/models"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	SetDefaults()
	t.Cleanup(viper.Reset)
}

func TestDefaults(t *testing.T) {
	resetViper(t)

	assert.Equal(t, filepath.Join("target", "cucumber-html-reports"), GetSource())
	assert.Equal(t, filepath.Join("target", "cucumber-reports.zip"), GetDestination())
	assert.Equal(t, -1, GetCompressionLevel())
	assert.Equal(t, "info", GetLogLevel())

	format, err := GetFormat()
	require.NoError(t, err)
	assert.Equal(t, models.Format(""), format)

	policy, err := GetPolicy()
	require.NoError(t, err)
	assert.Equal(t, models.PolicyContinue, policy)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("REPORTZIP_ARCHIVE_FORMAT", "tgz")
	t.Setenv("REPORTZIP_ARCHIVE_POLICY", "abort")
	t.Setenv("REPORTZIP_ARCHIVE_LEVEL", "9")
	resetViper(t)

	format, err := GetFormat()
	require.NoError(t, err)
	assert.Equal(t, models.FormatTarGz, format)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, models.FormatTarGz, cfg.Archive.Format)
	assert.Equal(t, models.PolicyAbort, cfg.Archive.Policy)
	assert.Equal(t, 9, cfg.Archive.Level)
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	resetViper(t)
	viper.Set(KeyFormat, "rar")

	_, err := GetFormat()
	require.Error(t, err)

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown archive format")

	viper.Set(KeyFormat, "zip")
	viper.Set(KeyPolicy, "sometimes")
	_, err = GetPolicy()
	require.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Archive.Source = "build/reports"
	cfg.Archive.Format = models.FormatTarLz4
	require.NoError(t, WriteFile(path, cfg))

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	assert.Equal(t, "build/reports", GetSource())
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// An existing file is never overwritten.
	err = WriteFile(path, Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "reportzip", "config.toml"), path)
}
