// Package report renders assembled job reports into output formats.
package report

import (
	"fmt"
	"sync"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/pkg/logger"
)

// Format represents a report rendering strategy.
type Format interface {
	// Generate writes the report to outputPath in the specific format.
	Generate(data *assembly.ReportData, outputPath string) error
	// Name returns the format identifier (e.g., "html", "json").
	Name() string
	// Description returns a human-readable description of the format.
	Description() string
}

// FormatFactory creates instances of report formats.
type FormatFactory func(log logger.Logger) (Format, error)

var (
	formatRegistry = make(map[string]FormatFactory)
	registryMutex  sync.RWMutex
)

// RegisterFormat registers a new report format factory.
func RegisterFormat(name string, factory FormatFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("report: RegisterFormat factory is nil for format %q", name))
	}
	if _, dup := formatRegistry[name]; dup {
		panic(fmt.Sprintf("report: RegisterFormat called twice for format %q", name))
	}
	formatRegistry[name] = factory
}

// GetFormat creates an instance of the specified report format.
func GetFormat(name string, log logger.Logger) (Format, error) {
	registryMutex.RLock()
	factory, exists := formatRegistry[name]
	registryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown report format: %s", name)
	}

	return factory(log)
}

// ListFormats returns a list of all registered format names.
func ListFormats() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	formats := make([]string, 0, len(formatRegistry))
	for name := range formatRegistry {
		formats = append(formats, name)
	}
	return formats
}

func init() {
	RegisterFormat("html", func(log logger.Logger) (Format, error) {
		return &htmlFormat{logger: log}, nil
	})
	RegisterFormat("json", func(log logger.Logger) (Format, error) {
		return &jsonFormat{logger: log}, nil
	})
}
