package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pders01/reportzip/internal/archiver"
	"github.com/pders01/reportzip/internal/models"
)

var (
	listFormat string
	listJSON   bool
	listToon   bool
)

var listCmd = &cobra.Command{
	Use:   "list <archive>",
	Short: "List the entries of an archive",
	Long: `List every entry stored in an archive, in stored order.

Examples:
  reportzip list target/cucumber-reports.zip
  reportzip list reports.tar.gz --json
  reportzip list reports.bin --format tar.lz4`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFormat, "format", "", "Archive format (default: from file extension)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().BoolVar(&listToon, "toon", false, "Output in LLM-friendly toon format")
}

func runList(cmd *cobra.Command, args []string) error {
	var format models.Format
	if listFormat != "" {
		f, err := models.ParseFormat(listFormat)
		if err != nil {
			return err
		}
		format = f
	}

	entries, err := archiver.ReadEntries(afero.NewOsFs(), args[0], format)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	if listJSON {
		if entries == nil {
			entries = []models.Entry{}
		}
		output, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(output))
		return nil
	}

	if listToon {
		output, err := gotoon.Encode(map[string]any{"entries": entries})
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(stdout, output)
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(stdout, "Archive is empty")
		return nil
	}

	var files, dirs int
	for _, e := range entries {
		if e.IsDir {
			dirs++
			fmt.Fprintf(stdout, "  d %10s  %s\n", "-", e.Path)
		} else {
			files++
			fmt.Fprintf(stdout, "  f %10d  %s\n", e.Size, e.Path)
		}
	}
	fmt.Fprintf(stdout, "\n%d entries (%d files, %d directories)\n", len(entries), files, dirs)
	return nil
}
