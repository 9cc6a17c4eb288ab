package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/internal/job"
)

// RecordCompletedJob persists a completed job's records and summary under a
// client. The write happens only after aggregation succeeded, so failed or
// cancelled jobs never leave partial recommendation rows behind.
func (db *DB) RecordCompletedJob(ctx context.Context, clientName, environment string, result *job.Result, report *assembly.ReportData) (int64, error) {
	if result.Metrics == nil {
		return 0, fmt.Errorf("job %s has no metrics; refusing to persist an incomplete job", result.JobID)
	}

	client, err := db.GetOrCreateClient(ctx, clientName, environment)
	if err != nil {
		return 0, fmt.Errorf("resolving client: %w", err)
	}

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    result.JobID,
		ClientID:   client.ID,
		SourceFile: result.SourceFile,
		Status:     JobStatusRunning,
		StartedAt:  result.StartedAt,
	})
	if err != nil {
		return 0, fmt.Errorf("creating job: %w", err)
	}

	recs := make([]*Recommendation, 0, len(result.Records))
	for _, rec := range result.Records {
		row := &Recommendation{
			JobID:              jobID,
			RowIndex:           rec.Index,
			Category:           string(rec.Category),
			Impact:             string(rec.Impact),
			RecommendationText: rec.RecommendationText,
			ResourceName:       rec.ResourceName,
			ResourceGroup:      rec.ResourceGroup,
			SubscriptionID:     rec.SubscriptionID,
		}
		if rec.HasSavings() {
			row.PotentialSavings = sql.NullString{String: rec.PotentialSavings.String(), Valid: true}
			row.Currency = sql.NullString{String: rec.Currency, Valid: true}
		}
		recs = append(recs, row)
	}

	if err := db.BatchInsertRecommendations(ctx, jobID, recs); err != nil {
		return 0, fmt.Errorf("persisting recommendations: %w", err)
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("marshaling report: %w", err)
	}

	if err := db.SaveSummary(ctx, &Summary{
		JobID:                   jobID,
		TotalRecommendations:    result.Metrics.TotalRecommendations,
		TotalPotentialSavings:   result.Metrics.TotalPotentialSavings.String(),
		AveragePotentialSavings: result.Metrics.AveragePotentialSavings.String(),
		SavingsRecordCount:      result.Metrics.SavingsRecordCount,
		ProcessingErrors:        result.Metrics.ProcessingErrors,
		ReportJSON:              string(reportJSON),
	}); err != nil {
		return 0, fmt.Errorf("persisting summary: %w", err)
	}

	if err := db.FinishJob(ctx, jobID, JobStatusCompleted,
		result.Counters.RowsRead, result.Counters.RecordsMapped,
		result.Counters.MalformedLines, result.Counters.MappingErrors, nil); err != nil {
		return 0, fmt.Errorf("finishing job: %w", err)
	}

	return jobID, nil
}

// RecordFailedJob records a job that failed or was cancelled before
// producing metrics. Only the job row and its error details are stored.
func (db *DB) RecordFailedJob(ctx context.Context, clientName, environment string, result *job.Result, status JobStatus, errorDetails string) (int64, error) {
	client, err := db.GetOrCreateClient(ctx, clientName, environment)
	if err != nil {
		return 0, fmt.Errorf("resolving client: %w", err)
	}

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    result.JobID,
		ClientID:   client.ID,
		SourceFile: result.SourceFile,
		Status:     JobStatusRunning,
		StartedAt:  result.StartedAt,
	})
	if err != nil {
		return 0, fmt.Errorf("creating job: %w", err)
	}

	var details *string
	if errorDetails != "" {
		details = &errorDetails
	}

	if err := db.FinishJob(ctx, jobID, status,
		result.Counters.RowsRead, result.Counters.RecordsMapped,
		result.Counters.MalformedLines, result.Counters.MappingErrors, details); err != nil {
		return 0, fmt.Errorf("finishing job: %w", err)
	}

	return jobID, nil
}
