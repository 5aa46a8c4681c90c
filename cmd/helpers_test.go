package cmd

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pders01/reportzip/internal/archiver"
	"github.com/pders01/reportzip/internal/config"
)

// setupCommandTest resets global command state and captures output
func setupCommandTest(t *testing.T) *bytes.Buffer {
	t.Helper()

	viper.Reset()
	config.SetDefaults()
	resetFlag(t, "format", "")
	resetFlag(t, "level", strconv.Itoa(archiver.DefaultLevel))
	bindArchiveFlags()

	cfgFile = ""
	logLevel = ""
	logColorDisabled = false
	archiveFailFast = false
	archiveStrict = false
	archiveJSON = false
	archiveToon = false
	listFormat = ""
	listJSON = false
	listToon = false

	var buf bytes.Buffer
	stdout = &buf
	logrus.SetOutput(io.Discard)

	t.Cleanup(func() {
		viper.Reset()
		stdout = os.Stdout
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})
	return &buf
}

// resetFlag restores an archive flag to its default and clears Changed so
// viper falls through to config and environment again
func resetFlag(t *testing.T, name, value string) {
	t.Helper()
	flag := archiveCmd.Flags().Lookup(name)
	if flag == nil {
		t.Fatalf("archive flag %q not registered", name)
	}
	if err := flag.Value.Set(value); err != nil {
		t.Fatalf("reset flag %q: %v", name, err)
	}
	flag.Changed = false
}
