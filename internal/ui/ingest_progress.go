package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cloudlens/advisor/internal/job"
)

// ProgressMsg carries row counters from a running ingestion job.
type ProgressMsg job.Progress

// CompleteMsg indicates the job finished. Err is nil on success.
type CompleteMsg struct {
	Err error
}

// IngestProgress is the progress page shown while a job is running. Updates
// arrive over a channel fed by the job's progress observer; pressing q or
// ctrl+c invokes the cancel function, and the job winds down row-by-row.
type IngestProgress struct {
	startTime  time.Time
	updates    <-chan tea.Msg
	cancel     func()
	sourceFile string
	latest     job.Progress
	done       bool
	cancelling bool
	err        error
}

// NewIngestProgress creates a new ingestion progress page.
func NewIngestProgress(sourceFile string, updates <-chan tea.Msg, cancel func()) *IngestProgress {
	return &IngestProgress{
		startTime:  time.Now(),
		updates:    updates,
		cancel:     cancel,
		sourceFile: sourceFile,
	}
}

// Init starts listening for job updates.
func (p *IngestProgress) Init() tea.Cmd {
	return p.waitForUpdate()
}

// waitForUpdate blocks on the next message from the job.
func (p *IngestProgress) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-p.updates
		if !ok {
			return CompleteMsg{}
		}
		return msg
	}
}

// Update handles progress updates and cancellation keys.
func (p *IngestProgress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		p.latest = job.Progress(msg)
		return p, p.waitForUpdate()

	case CompleteMsg:
		p.done = true
		p.err = msg.Err
		return p, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !p.cancelling && p.cancel != nil {
				p.cancelling = true
				p.cancel()
			}
			return p, nil
		}
	}

	return p, nil
}

// Done reports whether the job has finished.
func (p *IngestProgress) Done() bool {
	return p.done
}

// Err returns the job error, if any.
func (p *IngestProgress) Err() error {
	return p.err
}

// View renders the progress page.
func (p *IngestProgress) View() string {
	title := TitleStyle.Render("Ingesting " + p.sourceFile)

	status := fmt.Sprintf("%s %s   %s %s   %s %s",
		LabelStyle.Render("rows read:"),
		ValueStyle.Render(fmt.Sprintf("%d", p.latest.RowsRead)),
		LabelStyle.Render("mapped:"),
		ValueStyle.Render(fmt.Sprintf("%d", p.latest.RecordsMapped)),
		LabelStyle.Render("errors:"),
		errorCountStyle(p.latest.Errors).Render(fmt.Sprintf("%d", p.latest.Errors)),
	)

	elapsed := LabelStyle.Render(fmt.Sprintf("elapsed: %s", time.Since(p.startTime).Round(time.Second)))

	var footer string
	switch {
	case p.cancelling:
		footer = WarnStyle.Render("Cancelling... finishing current row")
	case p.done && p.err != nil:
		footer = ErrorStyle.Render(fmt.Sprintf("Failed: %v", p.err))
	case p.done:
		footer = AmountStyle.Render("Done")
	default:
		footer = HelpStyle.Render("[q to cancel]")
	}

	return title + "\n" + status + "\n" + elapsed + "\n" + footer + "\n"
}

func errorCountStyle(n int) lipgloss.Style {
	if n > 0 {
		return WarnStyle
	}
	return ValueStyle
}
