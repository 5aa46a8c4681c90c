package cmd

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/reportzip/internal/config"
)

func TestInitLogRejectsUnknownLevel(t *testing.T) {
	setupCommandTest(t)
	logLevel = "loud"

	err := initLog()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestInitLogFlagOverridesConfig(t *testing.T) {
	setupCommandTest(t)
	viper.Set(config.KeyLogLevel, "warn")
	logLevel = "debug"
	logColorDisabled = true

	require.NoError(t, initLog())
	logrus.SetOutput(io.Discard)

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	formatter, ok := logrus.StandardLogger().Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.True(t, formatter.DisableColors)
}

func TestInitLogLevelFromConfig(t *testing.T) {
	setupCommandTest(t)
	viper.Set(config.KeyLogLevel, "error")

	require.NoError(t, initLog())
	logrus.SetOutput(io.Discard)
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
}
