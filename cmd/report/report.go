// Package report implements the report command for rendering saved job
// results into client deliverables.
package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudlens/advisor/internal/archive"
	"github.com/cloudlens/advisor/internal/config"
	"github.com/cloudlens/advisor/internal/report"
	"github.com/cloudlens/advisor/internal/storage"
	"github.com/cloudlens/advisor/pkg/logger"
)

var (
	configFile string
	jobPath    string
	outputDir  string
	formatFlag string
	doArchive  bool
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate reports from saved job results",
		Long: `Generate reports from a previously ingested job.

Reports are rendered from the job's saved results, so regenerating a report
never re-reads the original CSV export.`,
		Example: `  # Render the latest job as HTML
  advisor report --config configs/acme.yaml --job latest

  # Render both formats and upload them to the archive bucket
  advisor report --config configs/acme.yaml --job latest --format html,json --archive`,
		RunE: runReport,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to client config file (required)")
	cmd.Flags().StringVar(&jobPath, "job", "latest", "Job directory to render (or 'latest')")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the job directory)")
	cmd.Flags().StringVar(&formatFlag, "format", "html", "Report format(s): "+strings.Join(report.ListFormats(), ","))
	cmd.Flags().BoolVar(&doArchive, "archive", false, "Upload the job directory to the archive bucket")

	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store := storage.NewStorageWithLogger(cfg.Storage.DataDir, log)

	resolved := jobPath
	if resolved == "latest" {
		resolved, err = store.FindLatestJob()
		if err != nil {
			return fmt.Errorf("finding latest job: %w", err)
		}
		log.Info("Using latest job", "path", resolved)
	}

	summary, data, err := store.LoadJobResults(resolved)
	if err != nil {
		return fmt.Errorf("loading job results: %w", err)
	}

	destDir := outputDir
	if destDir == "" {
		destDir = resolved
	}

	for _, name := range strings.Split(formatFlag, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		format, err := report.GetFormat(name, log)
		if err != nil {
			return err
		}

		outputPath := filepath.Join(destDir, "report."+name)
		if err := format.Generate(data, outputPath); err != nil {
			return fmt.Errorf("generating %s report: %w", name, err)
		}
		log.Info("Report written", "format", name, "path", outputPath)
	}

	if doArchive {
		if cfg.Archive == nil {
			return fmt.Errorf("--archive requires an archive section in the config")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		archiver, err := archive.NewWithLogger(ctx, cfg.Archive, log)
		if err != nil {
			return fmt.Errorf("creating archiver: %w", err)
		}

		keys, err := archiver.ArchiveJob(ctx, summary.ClientName, summary.Environment, summary.JobID, resolved)
		if err != nil {
			return fmt.Errorf("archiving job: %w", err)
		}
		log.Info("Job archived", "bucket", cfg.Archive.Bucket, "objects", len(keys))
	}

	return nil
}
