// Package scheduler wires up the cron job that periodically recounts the
// application counter of every job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Recounter is the sweep the scheduler runs; *hiring.Counter satisfies it.
type Recounter interface {
	RecountAll(ctx context.Context) (failed int, err error)
}

// Scheduler wraps robfig/cron and manages the reconciliation loop.
type Scheduler struct {
	cron    *cron.Cron
	counter Recounter
	spec    string // cron spec, e.g. "@every 60m"

	mu      sync.Mutex
	running bool
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(counter Recounter, intervalMinutes int) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		counter: counter,
		spec:    fmt.Sprintf("@every %dm", intervalMinutes),
	}
}

// Start registers the job and starts the scheduler. One sweep also runs
// immediately so counters are repaired without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	slog.Info("recount scheduler started", "spec", s.spec)

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("recount scheduler stopped")
}

// RunOnce performs one sweep. It returns false without sweeping when a
// previous sweep is still in progress.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Debug("recount sweep skipped: previous sweep still running")
		return false
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	failed, err := s.counter.RecountAll(ctx)
	if err != nil {
		slog.Warn("recount sweep aborted", "err", err, "failedJobs", failed)
		return true
	}
	if failed > 0 {
		slog.Warn("recount sweep completed with failures", "failedJobs", failed)
		return true
	}
	slog.Debug("recount sweep completed")
	return true
}
