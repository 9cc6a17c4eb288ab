package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/internal/job"
	"github.com/cloudlens/advisor/internal/models"
	"github.com/cloudlens/advisor/internal/stats"
	"github.com/cloudlens/advisor/pkg/logger"
)

func sampleSummary(startedAt time.Time) JobSummary {
	return JobSummary{
		JobID:       "7f8d9e10-0000-0000-0000-000000000001",
		ClientName:  "acme",
		Environment: "production",
		SourceFile:  "export.csv",
		Status:      job.StatusCompleted,
		StartedAt:   startedAt,
		CompletedAt: startedAt.Add(2 * time.Second),
		Counters:    job.Counters{RowsRead: 10, RecordsMapped: 9, MappingErrors: 1},
	}
}

func sampleReport() *assembly.ReportData {
	metrics := stats.Aggregate([]models.Recommendation{
		{Category: models.CategoryCost, Impact: models.ImpactHigh, RecommendationText: "Right-size VMs"},
	}, 10)
	data := assembly.Assemble(metrics, assembly.Options{ClientName: "acme", Currency: "USD"})
	return &data
}

func TestSaveAndLoadJobResults(t *testing.T) {
	store := NewStorageWithLogger(t.TempDir(), logger.NewMockLogger())
	summary := sampleSummary(time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC))

	jobDir, err := store.SaveJobResults(summary, sampleReport())
	require.NoError(t, err)
	assert.Contains(t, jobDir, "2026-02-03-103000-acme")

	loadedSummary, loadedReport, err := store.LoadJobResults(jobDir)
	require.NoError(t, err)

	assert.Equal(t, summary.JobID, loadedSummary.JobID)
	assert.Equal(t, job.StatusCompleted, loadedSummary.Status)
	assert.Equal(t, 1, loadedSummary.Counters.MappingErrors)
	assert.Equal(t, 1, loadedReport.TotalRecommendations)
	assert.Equal(t, "acme", loadedReport.ClientName)
	assert.Len(t, loadedReport.CategoryDistribution, 5)
}

func TestFindLatestJob(t *testing.T) {
	store := NewStorageWithLogger(t.TempDir(), logger.NewMockLogger())

	_, err := store.FindLatestJob()
	assert.Error(t, err, "no jobs stored yet")

	older := sampleSummary(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	newer := sampleSummary(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	newer.JobID = "7f8d9e10-0000-0000-0000-000000000002"

	_, err = store.SaveJobResults(older, sampleReport())
	require.NoError(t, err)
	newerDir, err := store.SaveJobResults(newer, sampleReport())
	require.NoError(t, err)

	latest, err := store.FindLatestJob()
	require.NoError(t, err)
	assert.Equal(t, newerDir, latest)
}

func TestListJobs(t *testing.T) {
	store := NewStorageWithLogger(t.TempDir(), logger.NewMockLogger())

	jobs, err := store.ListJobs()
	require.NoError(t, err)
	assert.Empty(t, jobs)

	first := sampleSummary(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	second := sampleSummary(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	second.JobID = "7f8d9e10-0000-0000-0000-000000000002"

	_, err = store.SaveJobResults(first, sampleReport())
	require.NoError(t, err)
	_, err = store.SaveJobResults(second, sampleReport())
	require.NoError(t, err)

	jobs, err = store.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.JobID, jobs[0].JobID, "newest first")
	assert.Equal(t, first.JobID, jobs[1].JobID)
}
