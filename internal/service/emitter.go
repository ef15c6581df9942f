package service

import (
	"context"
	"log/slog"
	"sync"
)

// Events emitted by the services.
const (
	EventTemplateUpdated = "template:updated"
	EventExportCompleted = "export:completed"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from whoever listens
// ─────────────────────────────────────────────────────────────

// EventEmitter receives service notifications. The CLI logs them; the MCP
// server and tests record them.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// LogEmitter writes every event to a logger at info level.
type LogEmitter struct {
	Logger *slog.Logger
}

func (l LogEmitter) Emit(ctx context.Context, event string, data any) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "event: "+event, "data", data)
}

// MockEmitter is a test-friendly EventEmitter that records all calls.
// Safe for use from scheduler goroutines.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Count returns how many times event was emitted.
func (m *MockEmitter) Count(event string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Events {
		if e.Event == event {
			n++
		}
	}
	return n
}
