// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
)

// Status is a snapshot of the batch state.
type Status struct {
	IsRunning      bool
	ShouldStop     bool
	CurrentFile    string
	CurrentIndex   int
	ProcessedCount int
	FailedCount    int
	TotalFiles     int
	// CurrentProgress is the last percentage reported by the program for the last finished
	// file, or the share of finished files when it reported none.
	CurrentProgress float64
	// OverallProgress is the batch percentage including the file in flight.
	OverallProgress float64
	LastProgress    []progress.Observation
}

// Done returns the number of finished files.
func (s Status) Done() int {
	return s.ProcessedCount + s.FailedCount
}

// state is owned by the batch goroutine; every access goes through Orchestrator.mu.
type state struct {
	running         bool
	shouldStop      bool
	currentFile     string
	currentIndex    int
	processed       int
	failed          int
	total           int
	currentProgress float64
	overall         float64
	lastProgress    []progress.Observation
}

func (s *state) reset(total int) {
	*s = state{running: true, total: total}
}

func (s *state) snapshot() Status {
	return Status{
		IsRunning:       s.running,
		ShouldStop:      s.shouldStop,
		CurrentFile:     s.currentFile,
		CurrentIndex:    s.currentIndex,
		ProcessedCount:  s.processed,
		FailedCount:     s.failed,
		TotalFiles:      s.total,
		CurrentProgress: s.currentProgress,
		OverallProgress: s.overall,
		LastProgress:    append([]progress.Observation(nil), s.lastProgress...),
	}
}
