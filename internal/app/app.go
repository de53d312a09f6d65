// Package app runs the agenda refresh loop: check the token, resolve the
// window, fetch, render, show, then sleep until the next scheduled tick.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"portalcal/internal/auth"
	"portalcal/internal/battery"
	"portalcal/internal/gcal"
	"portalcal/internal/ics"
	appLog "portalcal/internal/log"
	"portalcal/internal/model"
	"portalcal/internal/render"
	"portalcal/internal/timewin"
)

// TokenEnsurer keeps an access token fresh. Sources that need no token
// (ICS feeds) run without one.
type TokenEnsurer interface {
	Ensure(ctx context.Context) error
}

// EventSource returns at most maxEvents single events inside w, ordered by
// start.
type EventSource interface {
	Fetch(ctx context.Context, calendarID string, maxEvents int, w timewin.Window) ([]model.Event, error)
}

// Screen pushes the composed scene to its outputs.
type Screen interface {
	Show() error
}

// Options are the loop's tunables.
type Options struct {
	CalendarID    string
	MaxEvents     int
	LookAheadDays int
	RetryInterval time.Duration
	// Refresh is a standard 5-field cron expression.
	Refresh string
}

// App is the long-lived context shared by every cycle.
type App struct {
	tokens   TokenEnsurer
	resolver *timewin.Resolver
	source   EventSource
	renderer *render.Renderer
	screen   Screen
	battery  battery.Reader
	schedule cron.Schedule
	opts     Options

	// wait blocks for d or until ctx is done.
	wait func(ctx context.Context, d time.Duration) error
}

// Option configures optional collaborators.
type Option func(*App)

// WithTokens enables the token check at the start of each cycle.
func WithTokens(t TokenEnsurer) Option {
	return func(a *App) { a.tokens = t }
}

// WithBattery refreshes the battery label on every cycle.
func WithBattery(r battery.Reader) Option {
	return func(a *App) { a.battery = r }
}

// New validates the refresh schedule and assembles an App.
func New(resolver *timewin.Resolver, source EventSource, renderer *render.Renderer, screen Screen, opts Options, extra ...Option) (*App, error) {
	sched, err := cron.ParseStandard(opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("app: invalid refresh schedule %q: %w", opts.Refresh, err)
	}
	a := &App{
		resolver: resolver,
		source:   source,
		renderer: renderer,
		screen:   screen,
		schedule: sched,
		opts:     opts,
		wait:     sleepCtx,
	}
	for _, o := range extra {
		o(a)
	}
	return a, nil
}

// IsFatal reports errors that retrying cannot fix: a revoked or rejected
// refresh token, a Calendar API error, or a feed that answered non-2xx.
func IsFatal(err error) bool {
	return errors.Is(err, auth.ErrRevoked) ||
		errors.Is(err, gcal.ErrAPI) ||
		errors.Is(err, ics.ErrFeed)
}

// Cycle performs one refresh.
func (a *App) Cycle(ctx context.Context) error {
	if a.tokens != nil {
		if err := a.tokens.Ensure(ctx); err != nil {
			return err
		}
	}

	w := a.resolver.Current(a.opts.LookAheadDays)
	events, err := a.source.Fetch(ctx, a.opts.CalendarID, a.opts.MaxEvents, w)
	if err != nil {
		return err
	}

	if a.battery != nil {
		st, berr := a.battery.Read(ctx)
		if berr != nil {
			appLog.Warn("battery read failed", "err", berr)
		}
		a.renderer.SetBattery(battery.Label(st, berr))
	}

	a.renderer.Render(a.resolver.Now(), events)
	if err := a.screen.Show(); err != nil {
		return fmt.Errorf("app: show: %w", err)
	}

	appLog.Info("cycle complete", "events", len(events), "window_min", w.Min, "window_max", w.Max)
	return nil
}

// Run cycles until ctx is cancelled or a fatal error occurs. Transient
// failures are retried after RetryInterval, indefinitely. Cancellation
// returns nil.
func (a *App) Run(ctx context.Context) error {
	for {
		var d time.Duration
		if err := a.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if IsFatal(err) {
				appLog.Error("fatal error, stopping", err)
				return err
			}
			d = a.opts.RetryInterval
			appLog.Warn("cycle failed, retrying", "err", err, "in", d.String())
		} else {
			now := a.resolver.Now()
			d = a.schedule.Next(now).Sub(now)
			appLog.Debug("sleeping until next refresh", "in", d.String())
		}

		if err := a.wait(ctx, d); err != nil {
			return nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
