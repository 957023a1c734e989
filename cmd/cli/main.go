package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"hpoannotate/adapters/excel"
	"hpoannotate/domain/annotation"
	"hpoannotate/internal/config"
	"hpoannotate/internal/export"
	"hpoannotate/internal/summary"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hpoannotate-cli",
		Short:         "Offline tools for HPO sentence annotation datasets and exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newSummaryCmd(),
		newConvertCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dataset]",
		Short: "Check that a dataset loads and report its size",
		Long: `Load a dataset exactly as the annotation server would and report the
number of records. Without an argument the configured DATASET_FILE is used.

Example: hpoannotate-cli validate ./data/hpo_diverse_sentences_0-50.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				path = cfg.Data.DatasetFile
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), path)
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var asJSON bool
	var byLabel bool

	cmd := &cobra.Command{
		Use:   "summary [export-file]",
		Short: "Summarize an annotation export (.csv or .xlsx)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd.OutOrStdout(), args[0], asJSON, byLabel)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&byLabel, "labels", false, "Include per-term counts")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var format string
	var outDir string

	cmd := &cobra.Command{
		Use:   "convert [export-file]",
		Short: "Convert an annotation export between CSV and XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), cmd.OutOrStdout(), args[0], format, outDir)
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "Target format (csv or xlsx)")
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for the converted file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hpoannotate %s\n", version)
		},
	}
}

func runValidate(ctx context.Context, out io.Writer, path string) error {
	records, err := excel.NewDataReader(path).ReadRecords(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d records\n", path, len(records))
	if len(records) > 0 {
		first := records[0]
		fmt.Fprintf(out, "first: %s (%s)\n", first.HPOLabel, first.HPOID)
	}
	return nil
}

func readExport(path string) ([]annotation.Judgment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return excel.ParseXLSX(f)
	default:
		return excel.ParseCSV(f)
	}
}

func runSummary(out io.Writer, path string, asJSON, byLabel bool) error {
	rows, err := readExport(path)
	if err != nil {
		return err
	}

	s := summary.Compute(rows)
	if !byLabel {
		s.Labels = nil
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(out, "Completed: %d/%d annotations\n", s.Completed, s.Total)
	fmt.Fprintf(out, "Yes: %d  No: %d\n", s.Positives, s.Negatives)
	if s.Completed > 0 {
		fmt.Fprintf(out, "Positive rate: %.1f%% (95%% CI %.1f%% to %.1f%%)\n", s.PositiveRate*100, s.RateLow*100, s.RateHigh*100)
	}
	if s.MedianGapSec > 0 {
		fmt.Fprintf(out, "Median time between judgments: %.0fs\n", s.MedianGapSec)
	}
	for _, label := range s.Labels {
		fmt.Fprintf(out, "  %s (%s): %d yes, %d no, %d total\n", label.HPOLabel, label.HPOID, label.Positives, label.Negatives, label.Total)
	}
	return nil
}

func runConvert(ctx context.Context, out io.Writer, path, format, outDir string) error {
	rows, err := readExport(path)
	if err != nil {
		return err
	}

	annotator := ""
	if len(rows) > 0 {
		annotator = rows[0].Annotator
	}

	artifact, err := export.NewExporter(export.WithArchive(export.NewLocalFileStorage(outDir))).Export(ctx, annotator, rows, format)
	if err != nil {
		return err
	}
	if artifact.ArchivePath == "" {
		return fmt.Errorf("failed to write %s to %s", artifact.Filename, outDir)
	}

	fmt.Fprintf(out, "wrote %s (%d rows)\n", artifact.ArchivePath, artifact.Rows)
	return nil
}
