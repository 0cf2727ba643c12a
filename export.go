package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/electionwatch/candidate-dashboard/internal/analytics"
	"github.com/electionwatch/candidate-dashboard/internal/ingestion"
)

var (
	exportStart     string
	exportEnd       string
	exportCandidate string
	exportOut       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch posts once and write the aggregated report as JSON",
	Long: `Runs a single fetch, normalize and aggregate pass against the configured
data store and writes the report to --out, or stdout when --out is empty.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportStart, "start", "", "first day to include (YYYY-MM-DD), defaults to the earliest post")
	exportCmd.Flags().StringVar(&exportEnd, "end", "", "last day to include (YYYY-MM-DD), defaults to the latest post")
	exportCmd.Flags().StringVar(&exportCandidate, "candidate", analytics.CandidateAll, "All, Kamala Harris or Donald Trump")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, src, err := setup()
	if err != nil {
		return err
	}
	defer src.Close()

	snap, err := ingestion.NewService(cfg.Cache, src).Load(cmd.Context())
	if err != nil {
		return err
	}

	filter, err := analytics.ParseFilter(snap.Posts, exportStart, exportEnd, exportCandidate)
	if err != nil {
		return err
	}

	opts := analytics.ReportOptions{
		WordCloudLimit: cfg.Dashboard.WordCloudLimit,
		TopPosts:       cfg.Dashboard.TopPosts,
	}
	report := analytics.BuildReport(snap.Posts, filter, opts)

	if exportOut == "" {
		err = writeReport(cmd.OutOrStdout(), report)
	} else {
		err = writeReportFile(exportOut, report)
	}
	if err != nil {
		return err
	}

	slog.Info("[Export] Report written",
		slog.Int("posts", report.Total),
		slog.Int("dropped_rows", snap.Dropped),
		slog.String("out", exportOut))
	return nil
}

// writeReportFile writes the report to path. A failed close is reported
// since the data may not have reached the file.
func writeReportFile(path string, report analytics.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeReport(f, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func writeReport(w io.Writer, report analytics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
