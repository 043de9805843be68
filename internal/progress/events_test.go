// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{eventType: EventStarted, expected: "started"},
		{eventType: EventProgress, expected: "progress"},
		{eventType: EventOutput, expected: "output"},
		{eventType: EventCompleted, expected: "completed"},
		{eventType: EventFailed, expected: "failed"},
		{eventType: EventSkipped, expected: "skipped"},
		{eventType: EventBatchDone, expected: "batch-done"},
		{eventType: EventType(999), expected: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.eventType.String())
		})
	}
}

func TestNullReporter(t *testing.T) {
	reporter := NewNullReporter()
	require.NotNil(t, reporter)

	reporter.Report(Event{FilePath: "a.txt", Type: EventStarted, Timestamp: time.Now()})
	reporter.Close()
}

func TestReporterFunc(t *testing.T) {
	var got []EventType

	r := ReporterFunc(func(e Event) { got = append(got, e.Type) })
	r.Report(Event{Type: EventStarted})
	r.Report(Event{Type: EventCompleted})
	r.Close()

	assert.Equal(t, []EventType{EventStarted, EventCompleted}, got)
}

func TestChannelReporter(t *testing.T) {
	reporter := NewChannelReporter(context.Background(), 10)

	event := Event{FilePath: "/in/a.wav", Index: 0, Total: 2, Type: EventStarted, Message: "started"}
	reporter.Report(event)

	select {
	case received := <-reporter.Events():
		assert.Equal(t, event, received)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("event not received")
	}

	reporter.Close()
	reporter.Close()

	// dropped, must not panic
	reporter.Report(Event{Type: EventCompleted})
	assert.Error(t, reporter.Context().Err())
}

func TestChannelReporter_BufferOverflow(t *testing.T) {
	reporter := NewChannelReporter(context.Background(), 1)

	reporter.Report(Event{Type: EventStarted})
	reporter.Report(Event{Type: EventProgress})

	assert.Len(t, reporter.Events(), 1)
	reporter.Close()
}

type recordingListener struct {
	mu     sync.Mutex
	events []Event
}

func (l *recordingListener) OnEvent(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, e)
}

func TestChannelReporter_Listen(t *testing.T) {
	reporter := NewChannelReporter(context.Background(), 10)
	listener := &recordingListener{}
	reporter.Listen(listener)

	events := []Event{
		{FilePath: "a", Type: EventStarted},
		{FilePath: "a", Type: EventProgress, Data: EventData{Percentage: 50, OverallPercentage: 25}},
		{FilePath: "a", Type: EventCompleted},
	}

	for _, e := range events {
		reporter.Report(e)
	}

	reporter.Close()

	listener.mu.Lock()
	defer listener.mu.Unlock()

	require.Len(t, listener.events, len(events))

	for i, e := range events {
		assert.Equal(t, e.Type, listener.events[i].Type)
	}
}

func TestChannelReporter_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reporter := NewChannelReporter(ctx, 1)
	reporter.Listen(&recordingListener{})

	cancel()
	reporter.Report(Event{Type: EventStarted})
	reporter.Close()
}
