package worker

import (
	"context"
	"log/slog"
	"sync"
)

// Job is one unit of work run by a Pool.
type Job func(ctx context.Context) error

// Pool runs batches of jobs with bounded concurrency.
type Pool struct {
	workers int
	logger  *slog.Logger
}

// NewPool creates a new pool running at most workers jobs at once.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 2
	}
	return &Pool{
		workers: workers,
		logger:  logger,
	}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes every job and waits for all of them. The returned slice holds
// each job's error at the job's index. Jobs not yet started when ctx is
// canceled are skipped with ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []Job) []error {
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, p.workers)

	var wg sync.WaitGroup
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		case sem <- struct{}{}: // Acquire
		}

		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			defer func() { <-sem }() // Release

			if err := job(ctx); err != nil {
				p.logger.Warn("job failed", "index", i, "error", err)
				errs[i] = err
			}
		}(i, job)
	}
	wg.Wait()

	return errs
}
