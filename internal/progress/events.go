// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a real-time update about one file of a batch.
type Event struct {
	FilePath  string    // Input file the event is about; empty for batch-level events
	Index     int       // Zero-based position of the file in the batch
	Total     int       // Number of files in the batch
	Type      EventType // What happened
	Message   string    // Human-readable status
	Timestamp time.Time
	Data      EventData
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted indicates processing of a file has begun.
	EventStarted EventType = iota
	// EventProgress carries a new percentage.
	EventProgress
	// EventOutput carries a line of stdout or stderr.
	EventOutput
	// EventCompleted indicates the file was processed successfully.
	EventCompleted
	// EventFailed indicates the file failed.
	EventFailed
	// EventSkipped indicates the file was not processed because the batch stopped.
	EventSkipped
	// EventBatchDone is sent once after the last file.
	EventBatchDone
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	case EventBatchDone:
		return "batch-done"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information.
type EventData struct {
	// EventOutput
	OutputLine string
	IsStderr   bool

	// EventProgress
	Percentage        float64 // Percentage of the current file
	OverallPercentage float64 // Percentage of the whole batch

	// EventCompleted, EventFailed
	ExitCode int
	Error    error
}

// Reporter receives events. Implementations must not block the caller.
type Reporter interface {
	Report(event Event)
	Close()
}

// Listener consumes events forwarded by ChannelReporter.Listen.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter discards every event.
type NullReporter struct{}

// Report does nothing.
func (NullReporter) Report(Event) {}

// Close does nothing.
func (NullReporter) Close() {}

// NewNullReporter creates a NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Event)

// Report calls f.
func (f ReporterFunc) Report(e Event) {
	f(e)
}

// Close does nothing.
func (ReporterFunc) Close() {}
