// Package main is the entry point for the advisor CLI. Advisor ingests
// Azure Advisor recommendation exports, normalizes them into a job history
// database, and generates client-facing savings reports.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudlens/advisor/cmd/config"
	"github.com/cloudlens/advisor/cmd/ingest"
	"github.com/cloudlens/advisor/cmd/list"
	"github.com/cloudlens/advisor/cmd/report"
	"github.com/cloudlens/advisor/pkg/logger"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var (
		debug     bool
		logFormat string
	)

	root := &cobra.Command{
		Use:     "advisor",
		Short:   "Ingest Azure Advisor exports and generate savings reports",
		Version: fmt.Sprintf("%s (built %s)", version, buildTime),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupLogger(debug, logFormat)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")

	root.AddCommand(config.NewConfigCommand())
	root.AddCommand(ingest.NewIngestCommand())
	root.AddCommand(report.NewReportCommand())
	root.AddCommand(list.NewListCommand())

	if err := root.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
