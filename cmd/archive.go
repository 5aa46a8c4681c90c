package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/alpkeskin/gotoon"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/reportzip/internal/archiver"
	"github.com/pders01/reportzip/internal/config"
	"github.com/pders01/reportzip/internal/models"
)

var (
	archiveFailFast bool
	archiveStrict   bool
	archiveJSON     bool
	archiveToon     bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive [source] [destination]",
	Short: "Bundle a report directory into an archive",
	Long: `Create an archive of a report directory, preserving its structure.

Source and destination default to archive.source and archive.destination
from the config (target/cucumber-html-reports and target/cucumber-reports.zip).
The format is taken from --format, then archive.format, then the destination
extension (.zip, .tar.gz, .tgz, .tar.lz4).

Examples:
  reportzip archive
  reportzip archive build/reports build/reports.zip
  reportzip archive reports out.tar.gz --level 9
  reportzip archive reports out.zip --strict --json`,
	Args: cobra.MaximumNArgs(2),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().String("format", "", "Archive format: zip, tar.gz, tar.lz4 (default: from destination)")
	archiveCmd.Flags().Int("level", archiver.DefaultLevel, "Compression level 0-9, -1 for the codec default")
	archiveCmd.Flags().BoolVar(&archiveFailFast, "fail-fast", false, "Abort and discard the archive on the first unreadable entry")
	archiveCmd.Flags().BoolVar(&archiveStrict, "strict", false, "Exit with an error if any entry was skipped")
	archiveCmd.Flags().BoolVar(&archiveJSON, "json", false, "Output summary as JSON")
	archiveCmd.Flags().BoolVar(&archiveToon, "toon", false, "Output summary in LLM-friendly toon format")

	bindArchiveFlags()
}

// bindArchiveFlags lets --format and --level take precedence over the
// config file and environment
func bindArchiveFlags() {
	viper.BindPFlag(config.KeyFormat, archiveCmd.Flags().Lookup("format"))
	viper.BindPFlag(config.KeyLevel, archiveCmd.Flags().Lookup("level"))
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	source := cfg.Archive.Source
	destination := cfg.Archive.Destination
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		destination = args[1]
	}

	policy := cfg.Archive.Policy
	if archiveFailFast {
		policy = models.PolicyAbort
	}

	a := archiver.New(
		archiver.WithFormat(cfg.Archive.Format),
		archiver.WithCompressionLevel(cfg.Archive.Level),
		archiver.WithPolicy(policy),
		archiver.WithLogger(logrus.StandardLogger()),
	)

	summary, err := a.Archive(source, destination)
	if err != nil {
		if errors.Is(err, archiver.ErrSourceNotFound) {
			return fmt.Errorf("nothing to archive at %s: %w", source, err)
		}
		return fmt.Errorf("failed to create archive: %w", err)
	}

	if err := printSummary(summary); err != nil {
		return err
	}

	if archiveStrict && !summary.Complete() {
		return fmt.Errorf("archive is incomplete: %d entries could not be archived", len(summary.Failures))
	}
	return nil
}

func printSummary(summary *models.Summary) error {
	if archiveJSON {
		output, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(stdout, string(output))
		return nil
	}

	if archiveToon {
		output, err := gotoon.Encode(summary)
		if err != nil {
			return fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(stdout, output)
		return nil
	}

	if info, err := afero.NewOsFs().Stat(summary.Destination); err == nil {
		fmt.Fprintf(stdout, "✓ Archive created: %s (%.2f KB)\n", summary.Destination, float64(info.Size())/1024)
	} else {
		fmt.Fprintf(stdout, "✓ Archive created: %s\n", summary.Destination)
	}
	fmt.Fprintf(stdout, "  Format:      %s\n", summary.Format)
	fmt.Fprintf(stdout, "  Files:       %d (%d bytes)\n", summary.Files, summary.Bytes)
	fmt.Fprintf(stdout, "  Directories: %d\n", summary.Directories)

	if len(summary.Failures) > 0 {
		fmt.Fprintf(stdout, "\n⚠ Skipped %d entries:\n", len(summary.Failures))
		for _, f := range summary.Failures {
			op := f.Op
			if f.Partial {
				op += ", truncated in archive"
			}
			fmt.Fprintf(stdout, "  - %s (%s): %s\n", f.Path, op, f.Error)
		}
	}
	return nil
}
