package hiring

import (
	"context"
	"fmt"
	"log/slog"
)

// Counter keeps Job.ApplicationsCount equal to the number of live
// applications for the job. It recounts instead of incrementing, so
// concurrent recounts converge once the last one finishes.
type Counter struct {
	apps Store
	jobs JobDirectory
}

// NewCounter returns a Counter reading from apps and writing to jobs.
func NewCounter(apps Store, jobs JobDirectory) *Counter {
	return &Counter{apps: apps, jobs: jobs}
}

// Recount recomputes and stores the application count of one job.
func (c *Counter) Recount(ctx context.Context, jobID string) (int, error) {
	n, err := c.apps.CountByJob(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	if err := c.jobs.SetApplicationsCount(ctx, jobID, n); err != nil {
		return 0, fmt.Errorf("set applications count: %w", err)
	}
	return n, nil
}

// RecountAll recounts every job. A failure on one job is logged and does
// not stop the sweep; the number of jobs that failed is returned.
func (c *Counter) RecountAll(ctx context.Context) (failed int, err error) {
	ids, err := c.jobs.ListJobIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list jobs: %w", err)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return failed, ctx.Err()
		}
		if _, err := c.Recount(ctx, id); err != nil {
			slog.Warn("recount failed", "jobId", id, "err", err)
			failed++
		}
	}
	return failed, nil
}
