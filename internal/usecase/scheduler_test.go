package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDriver struct {
	job     func(time.Time)
	started bool
	stopped bool
}

func (d *stubDriver) Start(_ context.Context, job func(time.Time)) error {
	d.started = true
	d.job = job
	return nil
}

func (d *stubDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

func TestSchedulerRunsBatchOnTrigger(t *testing.T) {
	t.Parallel()

	source := &stubSource{}
	p := NewPipeline(PipelineDeps{Source: source, Analyzer: stubAnalyzer{}, Workers: 1})
	driver := &stubDriver{}

	s := NewScheduler(driver, p, []string{"AAA", "BBB"})
	require.NoError(t, s.Start(context.Background()))
	require.True(t, driver.started)
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	assert.ElementsMatch(t, []string{"AAA", "BBB"}, source.fetched)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerToleratesMissingDriver(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, nil, nil)
	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop(context.Background()))
}
