// Package list implements the list command for viewing job history.
package list

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudlens/advisor/internal/config"
	"github.com/cloudlens/advisor/internal/database"
	"github.com/cloudlens/advisor/pkg/logger"
)

var (
	configFile string
	dbPath     string
	clientName string
	limit      int
	formatFlag string
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List previous ingestion jobs",
		Example: `  advisor list
  advisor list --client acme --limit 20
  advisor list --format json`,
		RunE: runList,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to client config file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the job history database")
	cmd.Flags().StringVar(&clientName, "client", "", "Filter by client name")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of jobs to show")
	cmd.Flags().StringVar(&formatFlag, "format", "table", "Output format (table, json)")

	return cmd
}

// jobRow is the list entry shown per job.
type jobRow struct {
	StartedAt      time.Time `json:"started_at"`
	JobID          string    `json:"job_id"`
	Client         string    `json:"client"`
	Environment    string    `json:"environment"`
	SourceFile     string    `json:"source_file"`
	Status         string    `json:"status"`
	RecordsMapped  int       `json:"records_mapped"`
	MalformedLines int       `json:"malformed_lines"`
	MappingErrors  int       `json:"mapping_errors"`
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()
	ctx := context.Background()

	path := dbPath
	if path == "" && configFile != "" {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		path = cfg.Database.Path
	}
	if path == "" {
		path = config.DefaultDBPath
	}

	db, err := database.New(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Warn("failed to close database", "error", cerr)
		}
	}()

	clients, err := db.ListClients(ctx)
	if err != nil {
		return fmt.Errorf("listing clients: %w", err)
	}
	clientsByID := make(map[int64]*database.Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}

	filter := database.JobFilter{Limit: limit}
	if clientName != "" {
		var matched bool
		for _, c := range clients {
			if c.Name == clientName {
				id := c.ID
				filter.ClientID = &id
				matched = true
				break
			}
		}
		if !matched {
			log.Info("No jobs found for client", "client", clientName)
			return nil
		}
	}

	jobs, err := db.ListJobs(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}
	if len(jobs) == 0 {
		log.Info("No jobs found")
		return nil
	}

	rows := make([]jobRow, 0, len(jobs))
	for _, j := range jobs {
		row := jobRow{
			StartedAt:      j.StartedAt,
			JobID:          j.JobUUID,
			SourceFile:     j.SourceFile,
			Status:         string(j.Status),
			RecordsMapped:  j.RecordsMapped,
			MalformedLines: j.MalformedLines,
			MappingErrors:  j.MappingErrors,
		}
		if c, ok := clientsByID[j.ClientID]; ok {
			row.Client = c.Name
			row.Environment = c.Environment
		}
		rows = append(rows, row)
	}

	switch formatFlag {
	case "json":
		return displayJSON(rows)
	default:
		return displayTable(rows)
	}
}

func displayJSON(rows []jobRow) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

func displayTable(rows []jobRow) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tCLIENT\tENV\tSTATUS\tMAPPED\tERRORS\tSOURCE\tJOB ID")

	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			row.StartedAt.Format("2006-01-02 15:04"),
			row.Client,
			row.Environment,
			row.Status,
			row.RecordsMapped,
			row.MalformedLines+row.MappingErrors,
			row.SourceFile,
			row.JobID,
		)
	}

	return w.Flush()
}
