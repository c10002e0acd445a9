package mirror

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Schedule runs the mirror on a cron expression until ctx is cancelled.
// Runs never overlap; a run still in progress causes the next tick to be
// skipped. onResult receives the outcome of every run.
func (m *Mirror) Schedule(ctx context.Context, expr string, opts Options, onResult func(*Result, error)) error {
	logger := cron.PrintfLogger(m.log)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(logger)), cron.WithLogger(logger))

	_, err := c.AddFunc(expr, func() {
		res, err := m.Run(ctx, opts)
		if onResult != nil {
			onResult(res, err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	m.log.WithField("schedule", expr).Info("sync scheduled")
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
