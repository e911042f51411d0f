package app

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/fd1az/naijatrade/internal/logger"
)

// Refresher renews the session's tokens on a cron schedule.
type Refresher struct {
	cron *cron.Cron
	svc  *Service
	log  logger.LoggerInterface
}

// NewRefresher creates a stopped Refresher.
func NewRefresher(svc *Service, log logger.LoggerInterface) *Refresher {
	return &Refresher{cron: cron.New(), svc: svc, log: log}
}

// Start registers the refresh job and runs the scheduler until ctx is done.
// Schedules use the standard five-field syntax or descriptors such as
// "@every 20m".
func (r *Refresher) Start(ctx context.Context, schedule string) error {
	if _, err := r.cron.AddFunc(schedule, func() { r.RunNow(ctx) }); err != nil {
		return err
	}
	r.cron.Start()
	r.log.Info(ctx, "token refresher started", "schedule", schedule)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// RunNow refreshes once if a session exists.
func (r *Refresher) RunNow(ctx context.Context) {
	if _, ok := r.svc.session.RefreshToken(); !ok {
		return
	}
	if err := r.svc.Refresh(ctx); err != nil {
		r.log.Warn(ctx, "scheduled token refresh failed", "error", err)
		return
	}
	r.log.Debug(ctx, "tokens refreshed")
}

// Stop halts the scheduler and waits for a running job.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
