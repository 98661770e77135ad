// Package jobs runs the periodic highlight refresh: re-read stored state
// and republish the derived highlight sets so the browsing view stays
// current without manual reloads.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshFunc recomputes and republishes derived state for one department.
type RefreshFunc func(ctx context.Context, department string) error

// DepartmentLister supplies the departments to refresh each cycle.
type DepartmentLister interface {
	List(ctx context.Context) ([]string, error)
}

// Refresher re-runs the refresh function on a fixed interval. A cycle
// re-arms only after the previous one finished, so cycles never overlap;
// manual triggers share in-flight work with the scheduled ones.
type Refresher struct {
	interval time.Duration
	refresh  RefreshFunc
	depts    DepartmentLister
	logger   *slog.Logger
	group    singleflight.Group
}

// NewRefresher builds a refresher. interval must be positive.
func NewRefresher(interval time.Duration, depts DepartmentLister, refresh RefreshFunc, logger *slog.Logger) *Refresher {
	return &Refresher{interval: interval, refresh: refresh, depts: depts, logger: logger}
}

// Run loops until ctx is cancelled. The timer re-arms after each cycle
// completes rather than ticking on a fixed schedule.
func (r *Refresher) Run(ctx context.Context) error {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := r.Trigger(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("refresh cycle failed", slog.Any("error", err))
			}
			timer.Reset(r.interval)
		}
	}
}

// Trigger runs one refresh cycle now. Concurrent callers collapse onto a
// single in-flight cycle.
func (r *Refresher) Trigger(ctx context.Context) error {
	_, err, _ := r.group.Do("refresh", func() (any, error) {
		return nil, r.cycle(ctx)
	})
	return err
}

func (r *Refresher) cycle(ctx context.Context) error {
	departments, err := r.depts.List(ctx)
	if err != nil {
		return err
	}
	for _, dept := range departments {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := r.refresh(ctx, dept); err != nil {
			r.logger.Warn("refresh department",
				slog.String("department", dept), slog.Any("error", err))
		}
	}
	return nil
}
