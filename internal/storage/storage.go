// Package storage handles file-based persistence of job results.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/internal/job"
	"github.com/cloudlens/advisor/pkg/logger"
	"github.com/cloudlens/advisor/pkg/pathutil"
)

const jobsSubdir = "jobs"

// JobSummary is the metadata persisted alongside the assembled report.
type JobSummary struct {
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
	JobID       string       `json:"job_id"`
	ClientName  string       `json:"client_name"`
	Environment string       `json:"environment"`
	SourceFile  string       `json:"source_file"`
	Status      job.Status   `json:"status"`
	Counters    job.Counters `json:"counters"`
}

// Storage saves and loads job results under a base data directory.
type Storage struct {
	logger  logger.Logger
	baseDir string
}

// NewStorage creates a new storage instance.
func NewStorage(baseDir string) *Storage {
	return NewStorageWithLogger(baseDir, logger.GetGlobalLogger())
}

// NewStorageWithLogger creates a new storage instance with a custom logger.
func NewStorageWithLogger(baseDir string, log logger.Logger) *Storage {
	return &Storage{
		baseDir: baseDir,
		logger:  log,
	}
}

// JobDir returns the directory a job's results are stored under.
func (s *Storage) JobDir(summary JobSummary) string {
	name := fmt.Sprintf("%s-%s", summary.StartedAt.Format("2006-01-02-150405"), summary.ClientName)
	return filepath.Join(s.baseDir, jobsSubdir, name)
}

// SaveJobResults persists an assembled report and its job metadata. It must
// only be called after aggregation succeeded, so a failed job never leaves
// partial state on disk.
func (s *Storage) SaveJobResults(summary JobSummary, data *assembly.ReportData) (string, error) {
	jobDir, err := pathutil.ValidateDataPath(s.JobDir(summary), "")
	if err != nil {
		return "", fmt.Errorf("invalid job directory: %w", err)
	}

	if mkErr := os.MkdirAll(jobDir, 0750); mkErr != nil {
		return "", fmt.Errorf("creating job directory: %w", mkErr)
	}

	summaryPath, err := pathutil.JoinAndValidate(jobDir, "job.json")
	if err != nil {
		return "", fmt.Errorf("invalid job metadata path: %w", err)
	}
	if saveErr := s.saveJSON(summaryPath, summary); saveErr != nil {
		return "", fmt.Errorf("saving job metadata: %w", saveErr)
	}
	s.logger.Debug("Saved job metadata", "path", summaryPath)

	reportPath, err := pathutil.JoinAndValidate(jobDir, "report.json")
	if err != nil {
		return "", fmt.Errorf("invalid report path: %w", err)
	}
	if saveErr := s.saveJSON(reportPath, data); saveErr != nil {
		return "", fmt.Errorf("saving report data: %w", saveErr)
	}
	s.logger.Debug("Saved report data", "path", reportPath)

	return jobDir, nil
}

// LoadJobResults loads a stored job's metadata and assembled report.
func (s *Storage) LoadJobResults(jobDir string) (*JobSummary, *assembly.ReportData, error) {
	validDir, err := pathutil.ValidateDataPath(jobDir, "")
	if err != nil {
		return nil, nil, fmt.Errorf("invalid job directory: %w", err)
	}

	var summary JobSummary
	if err := s.loadJSON(filepath.Join(validDir, "job.json"), &summary); err != nil {
		return nil, nil, fmt.Errorf("loading job metadata: %w", err)
	}

	var data assembly.ReportData
	if err := s.loadJSON(filepath.Join(validDir, "report.json"), &data); err != nil {
		return nil, nil, fmt.Errorf("loading report data: %w", err)
	}

	return &summary, &data, nil
}

// FindLatestJob returns the most recent job directory, or an error when no
// jobs have been stored yet.
func (s *Storage) FindLatestJob() (string, error) {
	jobsDir := filepath.Join(s.baseDir, jobsSubdir)

	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		return "", fmt.Errorf("reading jobs directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no stored jobs found in %s", jobsDir)
	}

	// Directory names start with a sortable timestamp.
	sort.Strings(names)
	return filepath.Join(jobsDir, names[len(names)-1]), nil
}

// ListJobs returns all stored job summaries, newest first.
func (s *Storage) ListJobs() ([]JobSummary, error) {
	jobsDir := filepath.Join(s.baseDir, jobsSubdir)

	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading jobs directory: %w", err)
	}

	var summaries []JobSummary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		var summary JobSummary
		path := filepath.Join(jobsDir, entry.Name(), "job.json")
		if err := s.loadJSON(path, &summary); err != nil {
			s.logger.Warn("Skipping unreadable job directory", "path", path, "error", err)
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})
	return summaries, nil
}

func (s *Storage) saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func (s *Storage) loadJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path validated by caller
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
