package database

import (
	"database/sql"
	"time"
)

// JobStatus represents the status of an ingestion job.
type JobStatus string

// Job status values.
const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Client represents a client the platform ingests Advisor exports for.
type Client struct {
	CreatedAt   time.Time
	Name        string
	Environment string
	ID          int64
}

// Job represents one ingestion run in the database.
type Job struct {
	StartedAt      time.Time
	CompletedAt    sql.NullTime
	ErrorDetails   sql.NullString
	JobUUID        string
	SourceFile     string
	Status         JobStatus
	ID             int64
	ClientID       int64
	RowsRead       int
	RecordsMapped  int
	MalformedLines int
	MappingErrors  int
}

// Recommendation represents one normalized recommendation row.
// Savings amounts are stored as decimal strings to preserve precision.
type Recommendation struct {
	CreatedAt          time.Time
	PotentialSavings   sql.NullString
	Currency           sql.NullString
	Category           string
	Impact             string
	RecommendationText string
	ResourceName       string
	ResourceGroup      string
	SubscriptionID     string
	ID                 int64
	JobID              int64
	RowIndex           int
}

// Summary represents the aggregate metrics row persisted per completed job.
// ReportJSON carries the full assembled report structure.
type Summary struct {
	CreatedAt               time.Time
	TotalPotentialSavings   string
	AveragePotentialSavings string
	ReportJSON              string
	JobID                   int64
	TotalRecommendations    int
	SavingsRecordCount      int
	ProcessingErrors        int
}

// JobFilter provides filtering options for listing jobs.
type JobFilter struct {
	ClientID *int64
	Status   *JobStatus
	Limit    int
	Offset   int
}

// CategoryCounts represents recommendation counts per category for a job.
type CategoryCounts struct {
	Cost                  int
	Security              int
	HighAvailability      int
	Performance           int
	OperationalExcellence int
	Total                 int
}
