package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/reportzip/internal/config"
)

var (
	cfgFile          string
	logLevel         string
	logColorDisabled bool

	// stdout receives command output; tests swap it for a buffer
	stdout io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "reportzip",
	Short: "Package a test report directory into a single archive",
	Long: `reportzip bundles a generated report directory into one archive file
for upload or distribution:
  - every file and directory, including empty ones
  - paths relative to the report root with forward slashes
  - zip, tar.gz or tar.lz4 output

Unreadable entries are logged and skipped by default; use --fail-fast to
abort instead, or --strict to turn skipped entries into a failing exit code.`,
	SilenceUsage: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return initLog()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/reportzip/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default from config, info)")
	rootCmd.PersistentFlags().BoolVar(&logColorDisabled, "log-color-disabled", false, "Force to disable colorful logs")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		path, err := config.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.SetConfigFile(path)
		viper.SetConfigType("toml")
	}

	config.SetDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: failed to read config file: %v\n", err)
	}
}

func initLog() error {
	formatter := logrus.TextFormatter{
		FullTimestamp: true,
	}
	if logColorDisabled {
		formatter.DisableColors = true
	}
	logrus.SetFormatter(&formatter)
	logrus.SetOutput(os.Stderr)

	name := logLevel
	if name == "" {
		name = config.GetLogLevel()
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	logrus.SetLevel(level)
	return nil
}
