package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// GetOrCreateClient returns the client with the given name and environment,
// creating it on first use.
func (db *DB) GetOrCreateClient(ctx context.Context, name, environment string) (*Client, error) {
	client, err := db.GetClient(ctx, name, environment)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO clients (name, environment, created_at) VALUES (?, ?, ?)`,
		name, environment, time.Now())
	if err != nil {
		return nil, fmt.Errorf("inserting client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting last insert id: %w", err)
	}

	return &Client{ID: id, Name: name, Environment: environment}, nil
}

// GetClient looks up a client by name and environment.
func (db *DB) GetClient(ctx context.Context, name, environment string) (*Client, error) {
	var client Client
	err := db.QueryRowContext(ctx,
		`SELECT id, name, environment, created_at FROM clients WHERE name = ? AND environment = ?`,
		name, environment).
		Scan(&client.ID, &client.Name, &client.Environment, &client.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying client: %w", err)
	}
	return &client, nil
}

// ListClients returns all clients ordered by name.
func (db *DB) ListClients(ctx context.Context) ([]*Client, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, environment, created_at FROM clients ORDER BY name, environment`)
	if err != nil {
		return nil, fmt.Errorf("querying clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var clients []*Client
	for rows.Next() {
		var client Client
		if err := rows.Scan(&client.ID, &client.Name, &client.Environment, &client.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}
		clients = append(clients, &client)
	}
	return clients, rows.Err()
}

// CreateJob creates a new job record in running state.
func (db *DB) CreateJob(ctx context.Context, job *Job) (int64, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO jobs (job_uuid, client_id, source_file, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		job.JobUUID, job.ClientID, job.SourceFile, job.Status, job.StartedAt)
	if err != nil {
		return 0, fmt.Errorf("inserting job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}

// FinishJob records a job's terminal status and counters.
func (db *DB) FinishJob(ctx context.Context, jobID int64, status JobStatus, rowsRead, recordsMapped, malformedLines, mappingErrors int, errorDetails *string) error {
	result, err := db.ExecContext(ctx, `
		UPDATE jobs
		SET status = ?, completed_at = ?, rows_read = ?, records_mapped = ?,
		    malformed_lines = ?, mapping_errors = ?, error_details = ?
		WHERE id = ?`,
		status, time.Now(), rowsRead, recordsMapped, malformedLines, mappingErrors, errorDetails, jobID)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	return nil
}

// GetJob loads a job by its numeric ID.
func (db *DB) GetJob(ctx context.Context, jobID int64) (*Job, error) {
	var job Job
	err := db.QueryRowContext(ctx, `
		SELECT id, job_uuid, client_id, source_file, status, started_at, completed_at,
		       rows_read, records_mapped, malformed_lines, mapping_errors, error_details
		FROM jobs WHERE id = ?`, jobID).
		Scan(&job.ID, &job.JobUUID, &job.ClientID, &job.SourceFile, &job.Status,
			&job.StartedAt, &job.CompletedAt,
			&job.RowsRead, &job.RecordsMapped, &job.MalformedLines, &job.MappingErrors,
			&job.ErrorDetails)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying job: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs matching the filter, newest first.
func (db *DB) ListJobs(ctx context.Context, filter JobFilter) ([]*Job, error) {
	query := `
		SELECT id, job_uuid, client_id, source_file, status, started_at, completed_at,
		       rows_read, records_mapped, malformed_lines, mapping_errors, error_details
		FROM jobs`

	var conditions []string
	var args []any
	if filter.ClientID != nil {
		conditions = append(conditions, "client_id = ?")
		args = append(args, *filter.ClientID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*Job
	for rows.Next() {
		var job Job
		if err := rows.Scan(&job.ID, &job.JobUUID, &job.ClientID, &job.SourceFile, &job.Status,
			&job.StartedAt, &job.CompletedAt,
			&job.RowsRead, &job.RecordsMapped, &job.MalformedLines, &job.MappingErrors,
			&job.ErrorDetails); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// BatchInsertRecommendations inserts recommendations in chunks to avoid SQL
// query size limits.
func (db *DB) BatchInsertRecommendations(ctx context.Context, jobID int64, recs []*Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	const chunkSize = 500

	for i := 0; i < len(recs); i += chunkSize {
		end := i + chunkSize
		if end > len(recs) {
			end = len(recs)
		}

		if err := db.insertRecommendationChunk(ctx, jobID, recs[i:end]); err != nil {
			return fmt.Errorf("inserting chunk %d-%d: %w", i, end, err)
		}
	}

	return nil
}

func (db *DB) insertRecommendationChunk(ctx context.Context, jobID int64, recs []*Recommendation) error {
	return db.InTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recommendations (job_id, row_index, category, impact, recommendation_text,
			                             resource_name, resource_group, subscription_id,
			                             potential_savings, currency)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer func() {
			_ = stmt.Close()
		}()

		for _, rec := range recs {
			if _, err := stmt.ExecContext(ctx,
				jobID, rec.RowIndex, rec.Category, rec.Impact, rec.RecommendationText,
				rec.ResourceName, rec.ResourceGroup, rec.SubscriptionID,
				rec.PotentialSavings, rec.Currency); err != nil {
				return fmt.Errorf("inserting recommendation: %w", err)
			}
		}
		return nil
	})
}

// GetRecommendations returns a job's recommendations in ingestion order.
func (db *DB) GetRecommendations(ctx context.Context, jobID int64) ([]*Recommendation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, job_id, row_index, category, impact, recommendation_text,
		       resource_name, resource_group, subscription_id, potential_savings, currency, created_at
		FROM recommendations WHERE job_id = ? ORDER BY row_index`, jobID)
	if err != nil {
		return nil, fmt.Errorf("querying recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []*Recommendation
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.RowIndex, &rec.Category, &rec.Impact,
			&rec.RecommendationText, &rec.ResourceName, &rec.ResourceGroup, &rec.SubscriptionID,
			&rec.PotentialSavings, &rec.Currency, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning recommendation: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// SaveSummary persists a completed job's aggregate metrics.
func (db *DB) SaveSummary(ctx context.Context, summary *Summary) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO summaries (job_id, total_recommendations, total_potential_savings,
		                       average_potential_savings, savings_record_count,
		                       processing_errors, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.JobID, summary.TotalRecommendations, summary.TotalPotentialSavings,
		summary.AveragePotentialSavings, summary.SavingsRecordCount,
		summary.ProcessingErrors, summary.ReportJSON)
	if err != nil {
		return fmt.Errorf("inserting summary: %w", err)
	}
	return nil
}

// GetSummary loads the summary for a job.
func (db *DB) GetSummary(ctx context.Context, jobID int64) (*Summary, error) {
	var summary Summary
	err := db.QueryRowContext(ctx, `
		SELECT job_id, total_recommendations, total_potential_savings,
		       average_potential_savings, savings_record_count, processing_errors,
		       report_json, created_at
		FROM summaries WHERE job_id = ?`, jobID).
		Scan(&summary.JobID, &summary.TotalRecommendations, &summary.TotalPotentialSavings,
			&summary.AveragePotentialSavings, &summary.SavingsRecordCount, &summary.ProcessingErrors,
			&summary.ReportJSON, &summary.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying summary: %w", err)
	}
	return &summary, nil
}

// GetCategoryCounts aggregates stored recommendation counts per category
// for a job, for spot checks against the computed distributions.
func (db *DB) GetCategoryCounts(ctx context.Context, jobID int64) (*CategoryCounts, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM recommendations WHERE job_id = ? GROUP BY category`, jobID)
	if err != nil {
		return nil, fmt.Errorf("querying category counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts CategoryCounts
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		counts.Total += n
		switch category {
		case "Cost":
			counts.Cost = n
		case "Security":
			counts.Security = n
		case "HighAvailability":
			counts.HighAvailability = n
		case "Performance":
			counts.Performance = n
		case "OperationalExcellence":
			counts.OperationalExcellence = n
		}
	}
	return &counts, rows.Err()
}
