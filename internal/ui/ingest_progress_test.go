package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudlens/advisor/internal/job"
)

func TestIngestProgressUpdatesCounters(t *testing.T) {
	p := NewIngestProgress("export.csv", nil, nil)

	_, cmd := p.Update(ProgressMsg(job.Progress{RowsRead: 12, RecordsMapped: 10, Errors: 2}))
	require.NotNil(t, cmd)

	view := p.View()
	assert.Contains(t, view, "export.csv")
	assert.Contains(t, view, "12")
	assert.Contains(t, view, "10")
	assert.Contains(t, view, "2")
}

func TestIngestProgressComplete(t *testing.T) {
	p := NewIngestProgress("export.csv", nil, nil)

	_, cmd := p.Update(CompleteMsg{})
	require.NotNil(t, cmd)
	assert.True(t, p.Done())
	assert.NoError(t, p.Err())
	assert.Contains(t, p.View(), "Done")
}

func TestIngestProgressFailure(t *testing.T) {
	p := NewIngestProgress("export.csv", nil, nil)

	_, _ = p.Update(CompleteMsg{Err: errors.New("file could not be decoded")})
	assert.True(t, p.Done())
	assert.Error(t, p.Err())
	assert.Contains(t, p.View(), "file could not be decoded")
}

func TestIngestProgressCancelKey(t *testing.T) {
	cancelled := false
	p := NewIngestProgress("export.csv", nil, func() { cancelled = true })

	_, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.True(t, cancelled)
	assert.Contains(t, p.View(), "Cancelling")

	// A second press does not invoke cancel again.
	cancelled = false
	_, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.False(t, cancelled)
}

func TestIngestProgressDrainsChannel(t *testing.T) {
	updates := make(chan tea.Msg, 2)
	updates <- ProgressMsg(job.Progress{RowsRead: 1})
	close(updates)

	p := NewIngestProgress("export.csv", updates, nil)

	cmd := p.Init()
	require.NotNil(t, cmd)

	msg := cmd()
	progress, ok := msg.(ProgressMsg)
	require.True(t, ok)
	assert.Equal(t, 1, progress.RowsRead)

	_, cmd = p.Update(progress)
	require.NotNil(t, cmd)

	// Channel closed: the next read completes the page.
	msg = cmd()
	_, ok = msg.(CompleteMsg)
	assert.True(t, ok)
}
