// Package dispatch fires registered reminders. It reads registrations from a
// sink, arms calendar triggers as weekly cron jobs and date triggers as
// timers, and hands fired reminders to a Deliverer.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/logger"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/reminders"
)

// Deliverer shows a fired reminder to the user.
type Deliverer interface {
	Deliver(ctx context.Context, content models.ReminderContent) error
}

// FireHandler is told about every fired reminder after delivery.
type FireHandler interface {
	OnFire(ctx context.Context, payload models.ReminderPayload) (bool, error)
}

type Option func(*Dispatcher)

// WithLocation sets the calendar cron triggers are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) { d.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithReloadInterval re-reads registrations periodically. Zero disables it.
func WithReloadInterval(interval time.Duration) Option {
	return func(d *Dispatcher) { d.interval = interval }
}

// WithWatchPath reloads whenever the file at path (or a sibling sharing its
// name as prefix, like a SQLite WAL) changes.
func WithWatchPath(path string) Option {
	return func(d *Dispatcher) { d.watchPath = path }
}

type Dispatcher struct {
	sink      reminders.Sink
	deliverer Deliverer
	handler   FireHandler

	loc       *time.Location
	now       func() time.Time
	interval  time.Duration
	watchPath string

	mu       sync.Mutex
	cron     *cron.Cron
	timers   map[string]*time.Timer
	runCtx   context.Context
	stopped  bool
	inflight sync.WaitGroup

	reloadCh chan struct{}
}

func New(sink reminders.Sink, deliverer Deliverer, handler FireHandler, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:      sink,
		deliverer: deliverer,
		handler:   handler,
		loc:       time.Local,
		now:       time.Now,
		timers:    make(map[string]*time.Timer),
		runCtx:    context.Background(),
		reloadCh:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Armed returns how many calendar jobs and one-shot timers are active.
func (d *Dispatcher) Armed() (calendar, oneShot int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		calendar = len(d.cron.Entries())
	}
	return calendar, len(d.timers)
}

// Reload disarms everything and arms the sink's current registrations.
// Date triggers already in the past are dropped from the sink and handed
// to the fire handler so the following occurrence is registered.
func (d *Dispatcher) Reload(ctx context.Context) error {
	scheduled, err := d.sink.ListScheduled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scheduled reminders: %w", err)
	}

	missed, err := d.arm(ctx, scheduled)

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	rearmed := false
	for _, r := range missed {
		ok, err := d.handler.OnFire(ctx, r.Content.Payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Key, err))
		}
		rearmed = rearmed || ok
	}
	if rearmed {
		d.requestReload()
	}
	return errors.Join(errs...)
}

// arm replaces the armed jobs and timers with scheduled. It returns the
// missed one-shots it removed from the sink.
func (d *Dispatcher) arm(ctx context.Context, scheduled []models.ScheduledReminder) ([]models.ScheduledReminder, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return nil, nil
	}
	d.disarmLocked()

	c := cron.New(cron.WithLocation(d.loc))
	now := d.now()
	var missed []models.ScheduledReminder
	var errs []error
	for _, r := range scheduled {
		r := r
		switch r.Trigger.Kind {
		case constants.TriggerCalendar:
			spec := cronSpec(r.Trigger)
			if _, err := c.AddFunc(spec, func() { d.fire(r) }); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Key, err))
			}
		case constants.TriggerDate:
			if !r.Trigger.At.After(now) {
				logger.Warn("Dropping missed reminder", "key", r.Key, "at", r.Trigger.At)
				if err := d.sink.Cancel(ctx, r.Key); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", r.Key, err))
					continue
				}
				missed = append(missed, r)
				continue
			}
			d.timers[r.Key] = time.AfterFunc(r.Trigger.At.Sub(now), func() { d.fire(r) })
		default:
			errs = append(errs, fmt.Errorf("%s: unknown trigger kind %q", r.Key, r.Trigger.Kind))
		}
	}
	c.Start()
	d.cron = c

	logger.Debug("Armed reminders", "calendar", len(c.Entries()), "oneShot", len(d.timers))
	return missed, errors.Join(errs...)
}

// cronSpec renders a weekly trigger as "<min> <hour> * * <weekday>".
func cronSpec(t models.Trigger) string {
	return fmt.Sprintf("%d %d * * %d", t.Minute, t.Hour, int(t.Weekday))
}

func (d *Dispatcher) disarmLocked() {
	if d.cron != nil {
		d.cron.Stop()
		d.cron = nil
	}
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

func (d *Dispatcher) fire(r models.ScheduledReminder) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.inflight.Add(1)
	ctx := d.runCtx
	if r.IsOneShot() {
		delete(d.timers, r.Key)
	}
	d.mu.Unlock()
	defer d.inflight.Done()

	logger.Debug("Reminder fired", "key", r.Key)
	if err := d.deliverer.Deliver(ctx, r.Content); err != nil {
		logger.Warn("Failed to deliver reminder", "key", r.Key, "error", err)
	}

	if r.IsOneShot() {
		// a delivered one-shot is consumed; OnFire may register the next one
		if err := d.sink.Cancel(ctx, r.Key); err != nil {
			logger.Warn("Failed to consume fired reminder", "key", r.Key, "error", err)
		}
	}

	rearmed, err := d.handler.OnFire(ctx, r.Content.Payload)
	if err != nil {
		logger.Error("Failed to handle fired reminder", "key", r.Key, "error", err)
	}
	if rearmed || r.IsOneShot() {
		d.requestReload()
	}
}

func (d *Dispatcher) requestReload() {
	select {
	case d.reloadCh <- struct{}{}:
	default:
	}
}

// Run arms the current registrations and keeps them in step with the sink
// until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.mu.Lock()
	d.runCtx = ctx
	d.mu.Unlock()
	defer d.Stop()

	if err := d.Reload(ctx); err != nil {
		logger.Warn("Some reminders could not be armed", "error", err)
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if d.watchPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(d.watchPath)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d.watchPath, err)
		}
		events, watchErrs = watcher.Events, watcher.Errors
	}

	var tick <-chan time.Time
	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if d.watches(ev.Name) {
				debounce = time.After(constants.WatchDebounce)
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			logger.Warn("File watcher error", "error", err)
		case <-debounce:
			debounce = nil
			d.reload(ctx, "store changed")
		case <-tick:
			d.reload(ctx, "interval")
		case <-d.reloadCh:
			d.reload(ctx, "fired")
		}
	}
}

func (d *Dispatcher) watches(name string) bool {
	return strings.HasPrefix(filepath.Base(name), filepath.Base(d.watchPath))
}

func (d *Dispatcher) reload(ctx context.Context, reason string) {
	logger.Debug("Reloading reminders", "reason", reason)
	if err := d.Reload(ctx); err != nil {
		logger.Warn("Failed to reload reminders", "reason", reason, "error", err)
	}
}

// Stop disarms every reminder and waits for in-flight fires. A stopped
// dispatcher ignores later reloads.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.stopped = true
	var done context.Context
	if d.cron != nil {
		done = d.cron.Stop()
		d.cron = nil
	}
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	d.mu.Unlock()

	if done != nil {
		<-done.Done()
	}
	d.inflight.Wait()
}
