// Package ingest implements the ingest command for processing Azure Advisor
// CSV exports into job results.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/internal/config"
	"github.com/cloudlens/advisor/internal/database"
	"github.com/cloudlens/advisor/internal/job"
	"github.com/cloudlens/advisor/internal/storage"
	"github.com/cloudlens/advisor/internal/ui"
	"github.com/cloudlens/advisor/pkg/logger"
	"github.com/cloudlens/advisor/pkg/pathutil"
)

var (
	configFile string
	inputFile  string
	topN       int
	noUI       bool
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest an Azure Advisor CSV export",
		Long: `Ingest an Azure Advisor recommendation export.

The file is decoded, normalized, and aggregated in a single pass. Results
are written to the data directory and recorded in the job history database.
Rows that cannot be parsed or mapped are counted and skipped; undecodable
or empty files abort the job.`,
		Example: `  # Ingest an export for the configured client
  advisor ingest --config configs/acme.yaml --file advisor-export.csv

  # Without the progress UI (for scripts and CI)
  advisor ingest --config configs/acme.yaml --file advisor-export.csv --no-ui`,
		RunE: runIngest,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to client config file (required)")
	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Path to the CSV export (required)")
	cmd.Flags().IntVar(&topN, "top-n", 0, "Override the top recommendation list size")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Disable the interactive progress UI")

	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logger.WithClient(cfg.Client.Name, cfg.Client.Environment)

	validInput, err := pathutil.ValidateInputPath(inputFile)
	if err != nil {
		return fmt.Errorf("invalid input file: %w", err)
	}

	file, err := os.Open(validInput) //nolint:gosec // Path validated above
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			log.Warn("failed to close input file", "error", cerr)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runnerOpts := []job.Option{
		job.WithDefaultCurrency(cfg.Ingest.DefaultCurrency),
		job.WithExtraAliases(cfg.HeaderAliases),
	}
	if len(cfg.Ingest.Encodings) > 0 {
		runnerOpts = append(runnerOpts, job.WithEncodings(cfg.Ingest.Encodings...))
	}
	effectiveTopN := cfg.Ingest.TopN
	if topN > 0 {
		effectiveTopN = topN
	}
	runnerOpts = append(runnerOpts, job.WithTopN(effectiveTopN))

	var result *job.Result
	var runErr error
	if noUI {
		runnerOpts = append(runnerOpts, job.WithProgress(func(p job.Progress) {
			if p.RowsRead%1000 == 0 {
				log.Info("Ingestion progress",
					"rows_read", p.RowsRead,
					"records_mapped", p.RecordsMapped,
					"errors", p.Errors)
			}
		}))
		runner := job.NewRunnerWithLogger(log, runnerOpts...)
		result, runErr = runner.Run(ctx, file, validInput)
	} else {
		result, runErr = runWithUI(ctx, cancel, log, file, validInput, runnerOpts)
	}

	db, dbErr := database.New(cfg.Database.Path)
	if dbErr != nil {
		return fmt.Errorf("opening database: %w", dbErr)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn("failed to close database", "error", cerr)
		}
	}()

	if runErr != nil {
		// Record the attempt even when no metrics were produced, so failed
		// and cancelled runs show up in the job history.
		recordCtx, recordCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer recordCancel()

		switch {
		case result != nil && result.Status == job.StatusCancelled:
			if _, recErr := db.RecordFailedJob(recordCtx, cfg.Client.Name, cfg.Client.Environment,
				result, database.JobStatusCancelled, "cancelled by operator"); recErr != nil {
				log.Warn("failed to record cancelled job", "error", recErr)
			}
			log.Warn("Ingestion cancelled",
				"rows_read", result.Counters.RowsRead,
				"records_mapped", result.Counters.RecordsMapped)
			return runErr
		case result != nil && result.Status == job.StatusFailed:
			if _, recErr := db.RecordFailedJob(recordCtx, cfg.Client.Name, cfg.Client.Environment,
				result, database.JobStatusFailed, runErr.Error()); recErr != nil {
				log.Warn("failed to record failed job", "error", recErr)
			}
		}
		return fmt.Errorf("ingestion failed: %w", runErr)
	}

	data := assembly.Assemble(*result.Metrics, assembly.Options{
		ClientName:  cfg.Client.Name,
		Environment: cfg.Client.Environment,
		JobID:       result.JobID,
		SourceFile:  result.SourceFile,
		Currency:    cfg.Ingest.DefaultCurrency,
		GeneratedAt: time.Now(),
	})

	store := storage.NewStorageWithLogger(cfg.Storage.DataDir, log)
	jobDir, err := store.SaveJobResults(storage.JobSummary{
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
		JobID:       result.JobID,
		ClientName:  cfg.Client.Name,
		Environment: cfg.Client.Environment,
		SourceFile:  result.SourceFile,
		Status:      result.Status,
		Counters:    result.Counters,
	}, &data)
	if err != nil {
		return fmt.Errorf("saving job results: %w", err)
	}

	// Persistence context is separate from the job context, so a late
	// interrupt cannot leave half-written history rows.
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer dbCancel()
	if _, err := db.RecordCompletedJob(dbCtx, cfg.Client.Name, cfg.Client.Environment, result, &data); err != nil {
		return fmt.Errorf("recording job history: %w", err)
	}

	fmt.Println(ui.RenderSummary(&data)) //nolint:forbidigo
	log.Info("Ingestion complete",
		"job_id", result.JobID,
		"job_dir", jobDir,
		"rows_read", result.Counters.RowsRead,
		"records_mapped", result.Counters.RecordsMapped,
		"processing_errors", result.Counters.ProcessingErrors())

	return nil
}

// runWithUI runs the job behind the interactive progress page. Pressing q
// cancels the context, and the runner winds down at the next row boundary.
func runWithUI(ctx context.Context, cancel context.CancelFunc, log logger.Logger, src io.Reader, sourceFile string, runnerOpts []job.Option) (*job.Result, error) {
	updates := make(chan tea.Msg, 64)

	runnerOpts = append(runnerOpts, job.WithProgress(func(p job.Progress) {
		select {
		case updates <- ui.ProgressMsg(p):
		default: // Never block the pipeline on a slow terminal.
		}
	}))
	runner := job.NewRunnerWithLogger(log, runnerOpts...)

	var result *job.Result
	var runErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		result, runErr = runner.Run(ctx, src, sourceFile)
		updates <- ui.CompleteMsg{Err: runErr}
		close(updates)
	}()

	page := ui.NewIngestProgress(sourceFile, updates, cancel)
	if _, err := tea.NewProgram(page).Run(); err != nil {
		// The terminal failed, not the job. Let the job finish headless.
		log.Warn("progress UI failed, continuing without it", "error", err)
	}

	// Drain remaining updates so the runner's final send never blocks.
	for range updates {
	}
	<-done

	return result, runErr
}
