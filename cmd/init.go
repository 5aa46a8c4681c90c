package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pders01/reportzip/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long: `Write a config file with the built-in defaults so they can be edited.

The file is written to --config if given, otherwise to
$HOME/.config/reportzip/config.toml. An existing file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := cfgFile
	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = path
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(stdout, "Config already exists: %s\n", configPath)
		return nil
	}

	if err := config.WriteFile(configPath, config.Default()); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ Created default config: %s\n", configPath)
	fmt.Fprintln(stdout, "  You can now use: reportzip archive")
	return nil
}
