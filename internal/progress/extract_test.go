// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		line  string
		want  float64
		found bool
	}{
		{line: "Processing: 42% complete", want: 42, found: true},
		{line: "Frame 3 of 12", want: 25, found: true},
		{line: "no numbers here", found: false},
		{line: "150%", want: 100, found: true},
		{line: "progress: 7%", want: 7, found: true},
		{line: "PROGRESS = 99 %", want: 99, found: true},
		{line: "encoded 12.5% so far", want: 12.5, found: true},
		{line: "10/40 segments", want: 25, found: true},
		{line: "processing 1 of 4", want: 25, found: true},
		{line: "File 2 of 8", want: 25, found: true},
		{line: "item 3 of 3", want: 100, found: true},
		{line: "task 1 of 10", want: 10, found: true},
		{line: "30 out of 60", want: 50, found: true},
		{line: "12 of 10 frames (frame 12 of 10)", want: 100, found: true},
		{line: "3 / 0", found: false},
		{line: "file 3 of 0 then 1/2", want: 50, found: true},
		{line: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := Extract(tt.line)
			assert.Equal(t, tt.found, ok)

			if tt.found {
				assert.InDelta(t, tt.want, got, 0.0001)
			}

			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestParse_PercentBeatsCount(t *testing.T) {
	m, ok := Parse("frame 1 of 4 (80%)")
	assert.True(t, ok)
	assert.Equal(t, MatchPercentage, m.Kind)
	assert.InDelta(t, 80, m.Percentage, 0.0001)
}

func TestParse_CountDetails(t *testing.T) {
	m, ok := Parse("Frame 3 of 12")
	assert.True(t, ok)
	assert.Equal(t, MatchCount, m.Kind)
	assert.Equal(t, "frame-of", m.Pattern)
	assert.InDelta(t, 3, m.Current, 0)
	assert.InDelta(t, 12, m.Total, 0)
	assert.Equal(t, "count", m.Kind.String())
}

func TestPatterns_Order(t *testing.T) {
	seenCount := false

	for _, p := range Patterns {
		if p.Kind == MatchCount {
			seenCount = true
			continue
		}

		assert.False(t, seenCount, "percentage pattern %s listed after a count pattern", p.Name)
	}
}

func TestStream_String(t *testing.T) {
	assert.Equal(t, "stdout", Stdout.String())
	assert.Equal(t, "stderr", Stderr.String())
}
