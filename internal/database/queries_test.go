package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestMigrationVersion(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.GetMigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestGetOrCreateClient(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)
	assert.NotZero(t, client.ID)
	assert.Equal(t, "acme", client.Name)
	assert.Equal(t, "production", client.Environment)

	// Same name and environment returns the existing row.
	again, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)
	assert.Equal(t, client.ID, again.ID)

	// A different environment is a distinct client.
	staging, err := db.GetOrCreateClient(ctx, "acme", "staging")
	require.NoError(t, err)
	assert.NotEqual(t, client.ID, staging.ID)

	clients, err := db.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestGetClientNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetClient(context.Background(), "nobody", "production")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    "550e8400-e29b-41d4-a716-446655440000",
		ClientID:   client.ID,
		SourceFile: "advisor-export.csv",
		Status:     JobStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	job, err := db.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusRunning, job.Status)
	assert.False(t, job.CompletedAt.Valid)

	err = db.FinishJob(ctx, jobID, JobStatusCompleted, 120, 115, 3, 2, nil)
	require.NoError(t, err)

	job, err = db.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.True(t, job.CompletedAt.Valid)
	assert.Equal(t, 120, job.RowsRead)
	assert.Equal(t, 115, job.RecordsMapped)
	assert.Equal(t, 3, job.MalformedLines)
	assert.Equal(t, 2, job.MappingErrors)
	assert.False(t, job.ErrorDetails.Valid)
}

func TestFinishJobWithErrorDetails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    "d7f1a2b3-0000-0000-0000-000000000001",
		ClientID:   client.ID,
		SourceFile: "broken.csv",
		Status:     JobStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	details := "file could not be decoded with any supported encoding"
	err = db.FinishJob(ctx, jobID, JobStatusFailed, 0, 0, 0, 0, &details)
	require.NoError(t, err)

	job, err := db.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, job.Status)
	require.True(t, job.ErrorDetails.Valid)
	assert.Equal(t, details, job.ErrorDetails.String)
}

func TestGetJobNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetJob(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListJobsFiltering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	acme, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)
	globex, err := db.GetOrCreateClient(ctx, "globex", "production")
	require.NoError(t, err)

	for i, tc := range []struct {
		clientID int64
		status   JobStatus
	}{
		{acme.ID, JobStatusCompleted},
		{acme.ID, JobStatusFailed},
		{globex.ID, JobStatusCompleted},
	} {
		jobID, err := db.CreateJob(ctx, &Job{
			JobUUID:    fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i),
			ClientID:   tc.clientID,
			SourceFile: "export.csv",
			Status:     JobStatusRunning,
			StartedAt:  time.Now().UTC(),
		})
		require.NoError(t, err)
		require.NoError(t, db.FinishJob(ctx, jobID, tc.status, 10, 10, 0, 0, nil))
	}

	all, err := db.ListJobs(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	acmeJobs, err := db.ListJobs(ctx, JobFilter{ClientID: &acme.ID})
	require.NoError(t, err)
	assert.Len(t, acmeJobs, 2)

	failed := JobStatusFailed
	failedJobs, err := db.ListJobs(ctx, JobFilter{Status: &failed})
	require.NoError(t, err)
	require.Len(t, failedJobs, 1)
	assert.Equal(t, acme.ID, failedJobs[0].ClientID)

	limited, err := db.ListJobs(ctx, JobFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestBatchInsertAndGetRecommendations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    "11111111-0000-0000-0000-000000000000",
		ClientID:   client.ID,
		SourceFile: "export.csv",
		Status:     JobStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	recs := []*Recommendation{
		{
			RowIndex:           1,
			Category:           "Security",
			Impact:             "High",
			RecommendationText: "Enable MFA on privileged accounts",
			ResourceName:       "contoso-tenant",
		},
		{
			RowIndex:           0,
			Category:           "Cost",
			Impact:             "Medium",
			RecommendationText: "Right-size underutilized virtual machines",
			ResourceName:       "vm-app-01",
			PotentialSavings:   sql.NullString{String: "1200.55", Valid: true},
			Currency:           sql.NullString{String: "USD", Valid: true},
		},
	}
	require.NoError(t, db.BatchInsertRecommendations(ctx, jobID, recs))

	got, err := db.GetRecommendations(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Rows come back in row_index order regardless of insert order.
	assert.Equal(t, 0, got[0].RowIndex)
	assert.Equal(t, "Cost", got[0].Category)
	assert.Equal(t, "1200.55", got[0].PotentialSavings.String)
	assert.Equal(t, "USD", got[0].Currency.String)
	assert.Equal(t, 1, got[1].RowIndex)
	assert.False(t, got[1].PotentialSavings.Valid)
}

func TestBatchInsertLargeSet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    "22222222-0000-0000-0000-000000000000",
		ClientID:   client.ID,
		SourceFile: "export.csv",
		Status:     JobStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	// Exceeds one chunk to exercise chunked insertion.
	recs := make([]*Recommendation, 1200)
	for i := range recs {
		recs[i] = &Recommendation{
			RowIndex:           i,
			Category:           "Cost",
			Impact:             "Low",
			RecommendationText: fmt.Sprintf("recommendation %d", i),
		}
	}
	require.NoError(t, db.BatchInsertRecommendations(ctx, jobID, recs))

	got, err := db.GetRecommendations(ctx, jobID)
	require.NoError(t, err)
	require.Len(t, got, 1200)
	assert.Equal(t, 0, got[0].RowIndex)
	assert.Equal(t, 1199, got[1199].RowIndex)
}

func TestSummaryRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    "33333333-0000-0000-0000-000000000000",
		ClientID:   client.ID,
		SourceFile: "export.csv",
		Status:     JobStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	err = db.SaveSummary(ctx, &Summary{
		JobID:                   jobID,
		TotalRecommendations:    42,
		TotalPotentialSavings:   "10500.75",
		AveragePotentialSavings: "437.53125",
		SavingsRecordCount:      24,
		ProcessingErrors:        3,
		ReportJSON:              `{"client_name":"acme"}`,
	})
	require.NoError(t, err)

	summary, err := db.GetSummary(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, 42, summary.TotalRecommendations)
	assert.Equal(t, "10500.75", summary.TotalPotentialSavings)
	assert.Equal(t, "437.53125", summary.AveragePotentialSavings)
	assert.Equal(t, 24, summary.SavingsRecordCount)
	assert.Equal(t, 3, summary.ProcessingErrors)
	assert.Contains(t, summary.ReportJSON, "acme")
}

func TestGetSummaryNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetSummary(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCategoryCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	client, err := db.GetOrCreateClient(ctx, "acme", "production")
	require.NoError(t, err)

	jobID, err := db.CreateJob(ctx, &Job{
		JobUUID:    "44444444-0000-0000-0000-000000000000",
		ClientID:   client.ID,
		SourceFile: "export.csv",
		Status:     JobStatusRunning,
		StartedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	recs := []*Recommendation{
		{RowIndex: 0, Category: "Cost", Impact: "High", RecommendationText: "a"},
		{RowIndex: 1, Category: "Cost", Impact: "Low", RecommendationText: "b"},
		{RowIndex: 2, Category: "Security", Impact: "High", RecommendationText: "c"},
		{RowIndex: 3, Category: "Performance", Impact: "Medium", RecommendationText: "d"},
	}
	require.NoError(t, db.BatchInsertRecommendations(ctx, jobID, recs))

	counts, err := db.GetCategoryCounts(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Cost)
	assert.Equal(t, 1, counts.Security)
	assert.Equal(t, 0, counts.HighAvailability)
	assert.Equal(t, 1, counts.Performance)
	assert.Equal(t, 0, counts.OperationalExcellence)
	assert.Equal(t, 4, counts.Total)
}
