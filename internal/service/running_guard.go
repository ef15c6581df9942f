package service

import (
	"context"
	"sync"
)

// ExportedRunningGuard is an exported alias so _test packages can test the guard.
type ExportedRunningGuard = runningJobsGuard

// ─────────────────────────────────────────────────────────────
// runningJobsGuard — one run per export job id at a time
// ─────────────────────────────────────────────────────────────

// runningJobsGuard refuses a second run of a job id while the first is in
// flight, whether it came from cron, a file event or a manual request.
type runningJobsGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks jobID as running. It returns false if it already is.
func (g *runningJobsGuard) TryLock(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, ok := g.running[jobID]; ok {
		return false
	}
	g.running[jobID] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock releases jobID. Must follow a successful TryLock.
func (g *runningJobsGuard) Unlock(jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, jobID)
	g.wg.Done()
}

// IsRunning reports whether jobID currently holds the guard.
func (g *runningJobsGuard) IsRunning(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[jobID]
	return ok
}

// WaitAll blocks until all running jobs complete or ctx is cancelled.
func (g *runningJobsGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
