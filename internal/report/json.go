package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/pkg/logger"
	"github.com/cloudlens/advisor/pkg/pathutil"
)

// jsonFormat writes the assembled report as indented JSON.
type jsonFormat struct {
	logger logger.Logger
}

// Generate writes the report as JSON.
func (f *jsonFormat) Generate(data *assembly.ReportData, outputPath string) error {
	validOutputPath, err := pathutil.ValidateOutputPath(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(validOutputPath), 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if err := os.WriteFile(validOutputPath, encoded, 0600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	f.logger.Info("Generated JSON report", "path", outputPath)
	return nil
}

// Name returns the format identifier.
func (f *jsonFormat) Name() string {
	return "json"
}

// Description returns a human-readable description.
func (f *jsonFormat) Description() string {
	return "Machine-readable JSON report for downstream tooling"
}
