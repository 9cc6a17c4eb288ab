package report

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/pkg/logger"
	"github.com/cloudlens/advisor/pkg/pathutil"
)

//go:embed templates/*
var templateFS embed.FS

// htmlFormat renders the assembled report as a standalone HTML document.
type htmlFormat struct {
	logger logger.Logger
}

// Generate creates the HTML report.
func (f *htmlFormat) Generate(data *assembly.ReportData, outputPath string) (err error) {
	validOutputPath, err := pathutil.ValidateOutputPath(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	tmpl, err := template.New("report").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(validOutputPath), 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.Create(validOutputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()

	if err := tmpl.ExecuteTemplate(file, "report.html", data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	f.logger.Info("Generated HTML report", "path", outputPath)
	return nil
}

// Name returns the format identifier.
func (f *htmlFormat) Name() string {
	return "html"
}

// Description returns a human-readable description.
func (f *htmlFormat) Description() string {
	return "Standalone HTML report with summary metrics and top recommendations"
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"categoryClass": func(category string) string {
			return fmt.Sprintf("category-%s", category)
		},
		"impactClass": func(impact string) string {
			return fmt.Sprintf("impact-%s", impact)
		},
		"impactIcon": func(impact string) string {
			switch impact {
			case "High":
				return "🔴"
			case "Medium":
				return "🟡"
			case "Low":
				return "🔵"
			default:
				return "⚪"
			}
		},
		"formatTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05")
		},
		"formatAmount": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"title": cases.Title(language.English).String,
		"truncate": func(s string, n int) string {
			if len(s) <= n {
				return s
			}
			return s[:n] + "..."
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}
