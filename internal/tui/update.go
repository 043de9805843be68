// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
)

const (
	defaultWidth           = 80
	defaultHeight          = 20
	minViewportWidth       = 40
	reservedLines          = 8 // title, bar, border, status and help
	fileDurationRounding   = 100 * time.Millisecond
	ellipsis               = "..."
	minHelpAvailableHeight = 10
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// BatchCompletedMsg indicates that the batch has finished.
type BatchCompletedMsg struct {
	Summary Summary
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.EnableMouseCellMotion
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		m.mutex.Unlock()

		return m, cmd

	case ProgressEventMsg:
		m.processProgressEvent(msg.Event)
		return m, cmd

	case BatchCompletedMsg:
		m.setSummary(msg.Summary)
		return m, cmd
	}

	return m, cmd
}

// handleKeyPress processes keyboard input. Scrolling is left to the viewport.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "ctrl+c":
		m.quitting = true
		m.aborted = true

		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updateViewportSize() {
	w := max(m.width-2, minViewportWidth)
	h := max(m.height-reservedLines, 1)

	m.viewport.Width = w
	m.viewport.Height = h
	m.bar.Width = max(w-20, 10)
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.quitting {
		if m.completed {
			return ""
		}

		return "Stopping after the current file...\n"
	}

	var content strings.Builder

	for _, node := range m.files {
		m.renderFileNode(&content, node)
	}

	if m.completed {
		content.WriteString("\n")

		s := m.summary
		msg := fmt.Sprintf("%d/%d processed, %d failed", s.Processed, s.Total, s.Failed)

		switch {
		case s.Failed > 0:
			content.WriteString(m.styles.Failed.Render("✗ Batch completed with errors: " + msg))
		case s.Stopped:
			content.WriteString(m.styles.Skipped.Render("■ Batch stopped: " + msg))
		default:
			content.WriteString(m.styles.Success.Render("✓ Batch completed: " + msg))
		}

		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("infiniconv"))
	view.WriteString("\n")
	view.WriteString(m.bar.ViewAs(m.overall / 100))
	view.WriteString(fmt.Sprintf(" %d/%d files", m.doneCount(), len(m.files)))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))

	if m.height == 0 || m.height > minHelpAvailableHeight {
		view.WriteString("\n")

		helpText := "↑/↓ to scroll, 'q' to stop after the current file, ctrl+c to cancel"
		if m.completed {
			helpText = "↑/↓ to scroll, 'q' to quit and return to terminal"
		}

		view.WriteString(m.styles.Help.Render(helpText))
	}

	return view.String()
}

func (m *Model) doneCount() int {
	n := 0

	for _, f := range m.files {
		switch f.GetDisplayInfo().Status {
		case StatusSuccess, StatusFailed:
			n++
		}
	}

	return n
}

// renderFileNode renders one file row with its output or error on the right.
func (m *Model) renderFileNode(b *strings.Builder, node *FileNode) {
	info := node.GetDisplayInfo()

	var (
		icon  string
		style lipgloss.Style
	)

	switch info.Status {
	case StatusPending:
		icon, style = "⏳", m.styles.Pending
	case StatusRunning:
		icon, style = "⚡", m.styles.Running
	case StatusSuccess:
		icon, style = "✅", m.styles.Success
	case StatusFailed:
		icon, style = "❌", m.styles.Failed
	case StatusSkipped:
		icon, style = "⏭", m.styles.Skipped
	default:
		icon, style = "❓", m.styles.Pending
	}

	left := info.Name

	if info.StartTime != nil {
		elapsed := time.Since(*info.StartTime)
		if info.EndTime != nil {
			elapsed = info.EndTime.Sub(*info.StartTime)
		}

		left += fmt.Sprintf(" (%v)", elapsed.Round(fileDurationRounding))
	}

	if info.Status == StatusRunning && info.Percentage > 0 {
		left += fmt.Sprintf(" %.1f%%", info.Percentage)
	}

	var (
		right      string
		rightStyle = m.styles.Output
	)

	switch {
	case info.Status == StatusFailed && info.ErrorMsg != "":
		right = "Error: " + info.ErrorMsg
		rightStyle = m.styles.Error
	case info.Status == StatusRunning:
		right = info.LastOutput
	}

	availableWidth := max(m.viewport.Width-4, minViewportWidth) // icon and padding
	leftWidth := availableWidth / 2                             //nolint:mnd
	rightWidth := availableWidth - leftWidth

	left = truncate(left, leftWidth)
	right = truncate(right, rightWidth)

	b.WriteString(icon)
	b.WriteString(" ")
	b.WriteString(style.Render(left))
	b.WriteString(strings.Repeat(" ", leftWidth-lipgloss.Width(left)))

	if right != "" {
		b.WriteString(rightStyle.Render(right))
	}

	b.WriteString("\n")
}

// truncate shortens s to at most width cells, adding an ellipsis.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+len(ellipsis) > width {
		runes = runes[:len(runes)-1]
	}

	if width <= len(ellipsis) {
		return string(runes)
	}

	return string(runes) + ellipsis
}
