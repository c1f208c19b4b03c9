package usecase

import (
	"context"
	"time"

	"FilingScanner/internal/ports"
)

// Scheduler re-runs the batch pipeline over a fixed ticker list whenever the
// driver fires, so a long-lived process picks up freshly filed documents.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	tickers  []string
}

// NewScheduler wires a scheduling driver to the pipeline.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, tickers []string) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, tickers: tickers}
}

// Start registers the recurring batch job with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(time.Time) {
		_, _ = s.pipeline.ProcessBatch(ctx, s.tickers)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
