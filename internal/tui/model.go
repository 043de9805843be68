// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
)

// FileStatus represents the current state of a file in the TUI.
type FileStatus int

const (
	StatusPending FileStatus = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusSkipped
)

// String returns a string representation of the file status.
func (s FileStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// FileNode is one row of the TUI.
type FileNode struct {
	Path       string
	Name       string
	Status     FileStatus
	StartTime  *time.Time
	EndTime    *time.Time
	LastOutput string
	ErrorMsg   string
	Percentage float64
	mutex      sync.RWMutex
}

// DisplayInfo is a consistent copy of the fields of a FileNode.
type DisplayInfo struct {
	Status     FileStatus
	Name       string
	LastOutput string
	ErrorMsg   string
	Percentage float64
	StartTime  *time.Time
	EndTime    *time.Time
}

// NewFileNode creates a pending node for path.
func NewFileNode(path string) *FileNode {
	return &FileNode{
		Path:   path,
		Name:   filepath.Base(path),
		Status: StatusPending,
	}
}

// UpdateStatus safely updates the status and the start and end times.
func (fn *FileNode) UpdateStatus(status FileStatus) {
	fn.mutex.Lock()
	defer fn.mutex.Unlock()

	fn.Status = status
	now := time.Now()

	switch status {
	case StatusRunning:
		if fn.StartTime == nil {
			fn.StartTime = &now
		}
	case StatusSuccess, StatusFailed:
		if fn.EndTime == nil {
			fn.EndTime = &now
		}

		if status == StatusSuccess {
			fn.Percentage = 100
		}
	}
}

// UpdateOutput keeps the last non-empty line of output.
func (fn *FileNode) UpdateOutput(output string) {
	fn.mutex.Lock()
	defer fn.mutex.Unlock()

	if output == "" {
		return
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		fn.LastOutput = last
	}
}

// UpdateError safely updates the error message.
func (fn *FileNode) UpdateError(err string) {
	fn.mutex.Lock()
	defer fn.mutex.Unlock()

	fn.ErrorMsg = err
}

// UpdatePercentage safely updates the percentage of the file.
func (fn *FileNode) UpdatePercentage(pct float64) {
	fn.mutex.Lock()
	defer fn.mutex.Unlock()

	fn.Percentage = pct
}

// GetDisplayInfo safely retrieves display information.
func (fn *FileNode) GetDisplayInfo() DisplayInfo {
	fn.mutex.RLock()
	defer fn.mutex.RUnlock()

	return DisplayInfo{
		Status:     fn.Status,
		Name:       fn.Name,
		LastOutput: fn.LastOutput,
		ErrorMsg:   fn.ErrorMsg,
		Percentage: fn.Percentage,
		StartTime:  fn.StartTime,
		EndTime:    fn.EndTime,
	}
}

// Summary is shown once the batch has finished.
type Summary struct {
	Processed int
	Failed    int
	Total     int
	Stopped   bool
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	files     []*FileNode
	nodeMap   map[string]*FileNode
	width     int
	height    int
	quitting  bool
	aborted   bool // ctrl+c: the batch should be cancelled, not only stopped
	completed bool
	summary   Summary
	overall   float64
	mutex     sync.RWMutex

	viewport viewport.Model
	bar      progressbar.Model

	styles *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Skipped lipgloss.Style
	Output  lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Skipped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a model listing files as pending.
func NewModel(ctx context.Context, files []string) *Model {
	m := &Model{
		ctx:      ctx,
		files:    make([]*FileNode, 0, len(files)),
		nodeMap:  make(map[string]*FileNode, len(files)),
		viewport: viewport.New(defaultWidth, defaultHeight),
		bar:      progressbar.New(progressbar.WithDefaultGradient()),
		styles:   NewStyles(),
	}

	for _, f := range files {
		m.getOrCreateNode(f)
	}

	return m
}

// Aborted reports whether the user asked to cancel the batch.
func (m *Model) Aborted() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.aborted
}

// getOrCreateNode returns the node for path, appending a new one when needed.
func (m *Model) getOrCreateNode(path string) *FileNode {
	if node, exists := m.nodeMap[path]; exists {
		return node
	}

	node := NewFileNode(path)
	m.nodeMap[path] = node
	m.files = append(m.files, node)

	return node
}

// processProgressEvent applies an event to the model.
func (m *Model) processProgressEvent(event progress.Event) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if event.Type == progress.EventBatchDone {
		return
	}

	if event.FilePath == "" {
		return
	}

	node := m.getOrCreateNode(event.FilePath)

	switch event.Type {
	case progress.EventStarted:
		node.UpdateStatus(StatusRunning)

		if event.Total > 0 {
			m.overall = float64(event.Index) / float64(event.Total) * 100
		}

	case progress.EventProgress:
		node.UpdatePercentage(event.Data.Percentage)
		node.UpdateOutput(event.Message)
		m.overall = event.Data.OverallPercentage

	case progress.EventOutput:
		node.UpdateOutput(event.Data.OutputLine)

	case progress.EventCompleted:
		node.UpdateStatus(StatusSuccess)
		m.advanceOverall(event)

	case progress.EventFailed:
		node.UpdateStatus(StatusFailed)

		if event.Data.Error != nil {
			node.UpdateError(event.Data.Error.Error())
		} else if event.Message != "" {
			node.UpdateError(event.Message)
		}

		m.advanceOverall(event)

	case progress.EventSkipped:
		node.UpdateStatus(StatusSkipped)
	}
}

func (m *Model) advanceOverall(event progress.Event) {
	if event.Total > 0 {
		m.overall = float64(event.Index+1) / float64(event.Total) * 100
	}
}

// setSummary marks the batch as finished.
func (m *Model) setSummary(s Summary) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.completed = true
	m.summary = s

	if !s.Stopped {
		m.overall = 100
	}
}
