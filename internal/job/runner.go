// Package job drives one end-to-end ingestion run: source bytes through the
// reader and mapper into aggregated summary metrics.
package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cloudlens/advisor/internal/ingest"
	"github.com/cloudlens/advisor/internal/mapper"
	"github.com/cloudlens/advisor/internal/models"
	"github.com/cloudlens/advisor/internal/stats"
	"github.com/cloudlens/advisor/pkg/logger"
)

// Status describes how a job ended.
type Status string

// Job status values.
const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Counters tracks per-job row accounting. MalformedLines and MappingErrors
// together form the processing_errors surfaced to report consumers.
type Counters struct {
	RowsRead       int
	RecordsMapped  int
	MalformedLines int
	MappingErrors  int
}

// ProcessingErrors is the combined count of rows that failed tokenization
// or mapping.
func (c Counters) ProcessingErrors() int {
	return c.MalformedLines + c.MappingErrors
}

// Progress is delivered to the observer after each row.
type Progress struct {
	RowsRead      int
	RecordsMapped int
	Errors        int
}

// Result is the outcome of one job. Metrics is nil unless the job completed:
// a cancelled or failed job never produces partial metrics, only counters.
type Result struct {
	StartedAt   time.Time
	CompletedAt time.Time
	JobID       string
	SourceFile  string
	Status      Status
	Records     []models.Recommendation
	Metrics     *models.SummaryMetrics
	Counters    Counters
}

// Option configures a Runner.
type Option func(*Runner)

// WithTopN overrides the top-recommendation list size.
func WithTopN(n int) Option {
	return func(r *Runner) {
		r.topN = n
	}
}

// WithDefaultCurrency sets the currency assumed for savings amounts with no
// currency column.
func WithDefaultCurrency(code string) Option {
	return func(r *Runner) {
		r.defaultCurrency = code
	}
}

// WithEncodings overrides the reader's decode attempt order.
func WithEncodings(encodings ...string) Option {
	return func(r *Runner) {
		r.encodings = encodings
	}
}

// WithExtraAliases appends configured header aliases per canonical field.
func WithExtraAliases(aliases map[string][]string) Option {
	return func(r *Runner) {
		r.extraAliases = aliases
	}
}

// WithProgress registers an observer invoked after every processed row.
func WithProgress(fn func(Progress)) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// Runner executes ingestion jobs. Each job owns its reader, mapper, and
// accumulators; runners share nothing across concurrent jobs.
type Runner struct {
	logger          logger.Logger
	onProgress      func(Progress)
	defaultCurrency string
	encodings       []string
	extraAliases    map[string][]string
	topN            int
}

// NewRunner creates a job runner.
func NewRunner(opts ...Option) *Runner {
	return NewRunnerWithLogger(logger.GetGlobalLogger(), opts...)
}

// NewRunnerWithLogger creates a job runner with a custom logger.
func NewRunnerWithLogger(log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		logger:          log,
		topN:            stats.DefaultTopN,
		defaultCurrency: "USD",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ingests one source to completion. Row-level failures are counted and
// skipped; job-level failures (undecodable source, missing header) abort
// with StatusFailed so the caller can record the attempt in the job history.
// Cancellation returns the partial counters with StatusCancelled and no
// metrics.
func (r *Runner) Run(ctx context.Context, src io.Reader, sourceFile string) (*Result, error) {
	result := &Result{
		JobID:      uuid.NewString(),
		SourceFile: sourceFile,
		StartedAt:  time.Now(),
	}
	log := r.logger.With("job_id", result.JobID, "source", sourceFile)

	var readerOpts []ingest.Option
	if len(r.encodings) > 0 {
		readerOpts = append(readerOpts, ingest.WithEncodings(r.encodings...))
	}

	reader, err := ingest.NewReaderWithLogger(src, log, readerOpts...)
	if err != nil {
		return r.fail(result, log, fmt.Errorf("opening source: %w", err))
	}

	m := mapper.NewMapper(reader.Header(),
		mapper.WithDefaultCurrency(r.defaultCurrency),
		mapper.WithExtraAliases(r.extraAliases))

	for {
		row, err := reader.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				result.Status = StatusCancelled
				result.Counters.MalformedLines = reader.MalformedLines()
				result.CompletedAt = time.Now()
				log.Warn("Job cancelled",
					"rows_read", result.Counters.RowsRead,
					"records_mapped", result.Counters.RecordsMapped)
				return result, err
			}
			result.Counters.MalformedLines = reader.MalformedLines()
			return r.fail(result, log, fmt.Errorf("reading source: %w", err))
		}

		result.Counters.RowsRead++

		rec, mapErr := m.Map(row)
		if mapErr != nil {
			result.Counters.MappingErrors++
			log.Debug("Row failed mapping", "error", mapErr)
		} else {
			result.Records = append(result.Records, rec)
			result.Counters.RecordsMapped++
		}

		if r.onProgress != nil {
			r.onProgress(Progress{
				RowsRead:      result.Counters.RowsRead,
				RecordsMapped: result.Counters.RecordsMapped,
				Errors:        result.Counters.MappingErrors + reader.MalformedLines(),
			})
		}
	}

	result.Counters.MalformedLines = reader.MalformedLines()

	metrics := stats.Aggregate(result.Records, r.topN)
	metrics.ProcessingErrors = result.Counters.ProcessingErrors()
	result.Metrics = &metrics
	result.Status = StatusCompleted
	result.CompletedAt = time.Now()

	log.Info("Job completed",
		"records", metrics.TotalRecommendations,
		"processing_errors", metrics.ProcessingErrors,
		"total_savings", metrics.TotalPotentialSavings.String())

	return result, nil
}

// fail finalizes a result for a job-level error. The result keeps its JobID
// and partial counters but never metrics, so nothing downstream can mistake
// it for a completed job.
func (r *Runner) fail(result *Result, log logger.Logger, err error) (*Result, error) {
	result.Status = StatusFailed
	result.CompletedAt = time.Now()
	log.Error("Job failed", "error", err, "rows_read", result.Counters.RowsRead)
	return result, err
}
