package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/pders01/reportzip/internal/archiver"
	"github.com/pders01/reportzip/internal/models"
)

const (
	KeySource      = "archive.source"
	KeyDestination = "archive.destination"
	KeyFormat      = "archive.format"
	KeyLevel       = "archive.level"
	KeyPolicy      = "archive.policy"
	KeyLogLevel    = "log.level"

	// EnvPrefix is prepended to upper-cased keys, e.g. REPORTZIP_ARCHIVE_SOURCE
	EnvPrefix = "reportzip"
)

// Config mirrors the config file layout
type Config struct {
	Archive ArchiveConfig `mapstructure:"archive" toml:"archive"`
	Log     LogConfig     `mapstructure:"log" toml:"log"`
}

// ArchiveConfig holds the archive command settings
type ArchiveConfig struct {
	Source      string        `mapstructure:"source" toml:"source"`
	Destination string        `mapstructure:"destination" toml:"destination"`
	Format      models.Format `mapstructure:"format" toml:"format"`
	Level       int           `mapstructure:"level" toml:"level"`
	Policy      models.Policy `mapstructure:"policy" toml:"policy"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Archive: ArchiveConfig{
			Source:      filepath.Join("target", "cucumber-html-reports"),
			Destination: filepath.Join("target", "cucumber-reports.zip"),
			Format:      "",
			Level:       archiver.DefaultLevel,
			Policy:      models.PolicyContinue,
		},
		Log: LogConfig{Level: "info"},
	}
}

// SetDefaults registers defaults and environment lookups with viper
func SetDefaults() {
	d := Default()
	viper.SetDefault(KeySource, d.Archive.Source)
	viper.SetDefault(KeyDestination, d.Archive.Destination)
	viper.SetDefault(KeyFormat, string(d.Archive.Format))
	viper.SetDefault(KeyLevel, d.Archive.Level)
	viper.SetDefault(KeyPolicy, string(d.Archive.Policy))
	viper.SetDefault(KeyLogLevel, d.Log.Level)

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load decodes the current viper settings into a Config
func Load() (*Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
	if err := viper.Unmarshal(&cfg, hook); err != nil {
		return nil, errors.WithMessage(err, "failed to decode config")
	}
	return &cfg, nil
}

// GetSource returns the directory to archive
func GetSource() string {
	return viper.GetString(KeySource)
}

// GetDestination returns the archive file to write
func GetDestination() string {
	return viper.GetString(KeyDestination)
}

// GetFormat returns the configured format, empty when it should be inferred
func GetFormat() (models.Format, error) {
	raw := viper.GetString(KeyFormat)
	if raw == "" {
		return "", nil
	}
	return models.ParseFormat(raw)
}

// GetCompressionLevel returns the codec level
func GetCompressionLevel() int {
	return viper.GetInt(KeyLevel)
}

// GetPolicy returns the per-entry error policy
func GetPolicy() (models.Policy, error) {
	return models.ParsePolicy(viper.GetString(KeyPolicy))
}

// GetLogLevel returns the configured log level name
func GetLogLevel() string {
	return viper.GetString(KeyLogLevel)
}

// DefaultPath returns $HOME/.config/reportzip/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WithMessage(err, "failed to get home directory")
	}
	return filepath.Join(home, ".config", "reportzip", "config.toml"), nil
}

// WriteFile encodes cfg as TOML at path, creating parent directories
func WriteFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithMessage(err, "failed to create config directory")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return errors.WithMessage(err, "failed to create config file")
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return errors.WithMessage(err, "failed to encode config")
	}
	return f.Close()
}
