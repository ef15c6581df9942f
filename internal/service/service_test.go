package service_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"orderexport/internal/service"
)

// ─────────────────────────────────────────────────────────────
// Running guard
// ─────────────────────────────────────────────────────────────

func TestRunningGuard_OneRunPerJob(t *testing.T) {
	var g service.ExportedRunningGuard

	if !g.TryLock("nightly") {
		t.Fatal("expected first TryLock to succeed")
	}
	if !g.IsRunning("nightly") {
		t.Error("expected nightly to be running")
	}
	if g.TryLock("nightly") {
		t.Fatal("expected second TryLock for the same job to fail")
	}
	if !g.TryLock("hourly") {
		t.Fatal("expected another job to lock independently")
	}

	g.Unlock("nightly")
	if g.IsRunning("nightly") {
		t.Error("expected nightly released")
	}
	if !g.TryLock("nightly") {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	g.Unlock("nightly")
	g.Unlock("hourly")
}

func TestRunningGuard_ConcurrentTryLock(t *testing.T) {
	var g service.ExportedRunningGuard
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryLock("job") {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if winners != 1 {
		t.Errorf("expected exactly one winner, got %d", winners)
	}
	g.Unlock("job")
}

func TestRunningGuard_WaitAll(t *testing.T) {
	var g service.ExportedRunningGuard
	if !g.TryLock("export") {
		t.Fatal("expected lock to succeed")
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Unlock("export")
		close(released)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	g.WaitAll(ctx)

	select {
	case <-released:
	default:
		t.Fatal("WaitAll returned before the job finished")
	}
}

func TestRunningGuard_WaitAllHonoursContext(t *testing.T) {
	var g service.ExportedRunningGuard
	g.TryLock("stuck")
	defer g.Unlock("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	g.WaitAll(ctx)
	if time.Since(start) > time.Second {
		t.Error("expected WaitAll to give up when ctx expires")
	}
}

// ─────────────────────────────────────────────────────────────
// Emitters
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_Count(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, service.EventTemplateUpdated, "t1")
	m.Emit(ctx, service.EventExportCompleted, nil)
	m.Emit(ctx, service.EventTemplateUpdated, "t2")

	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	if got := m.Count(service.EventTemplateUpdated); got != 2 {
		t.Errorf("expected 2 template:updated, got %d", got)
	}
	if m.Events[2].Data != "t2" {
		t.Errorf("expected last payload t2, got %v", m.Events[2].Data)
	}
}

func TestLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	e := service.LogEmitter{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	e.Emit(context.Background(), service.EventExportCompleted, "daily.csv")

	out := buf.String()
	if !strings.Contains(out, "event: export:completed") || !strings.Contains(out, "daily.csv") {
		t.Errorf("unexpected log line %q", out)
	}
}
