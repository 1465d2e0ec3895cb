package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Refresher reloads the current page on a fixed interval. It covers sources
// that cannot be watched, such as a deployed site.
type Refresher struct {
	scheduler gocron.Scheduler
	interval  time.Duration
	sidebars  Invalidator
	nav       Reloader
	logger    *slog.Logger
}

// NewRefresher creates a refresher; Run starts it.
func NewRefresher(interval time.Duration, sidebars Invalidator, nav Reloader, logger *slog.Logger) (*Refresher, error) {
	if interval <= 0 {
		return nil, ferrors.ValidationError("refresh interval must be positive").
			WithContext("interval", interval.String()).
			Build()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to create scheduler").Build()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{scheduler: s, interval: interval, sidebars: sidebars, nav: nav, logger: logger}, nil
}

// Run schedules the refresh job and blocks until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() { r.refresh(ctx) }),
		gocron.WithName("refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = r.scheduler.Shutdown()
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to schedule refresh").Build()
	}

	r.logger.Info("Starting refresh", slog.Duration("interval", r.interval))
	r.scheduler.Start()
	<-ctx.Done()
	if err := r.scheduler.Shutdown(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to stop scheduler").Build()
	}
	return nil
}

func (r *Refresher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	r.sidebars.Invalidate()
	if err := r.nav.Reload(ctx); err != nil {
		r.logger.WarnContext(ctx, "Scheduled reload failed", logfields.Error(err))
	}
}
