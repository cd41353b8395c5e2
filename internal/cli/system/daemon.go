package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/dispatch"
	"github.com/julianstephens/microhabit/internal/logger"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage/postgres"
)

const heartbeatInterval = time.Hour

type DaemonCmd struct {
	Once bool `help:"Sync and arm reminders, report, then exit."`
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	if ctx.Scheduler == nil || ctx.Sink == nil || ctx.Deliverer == nil {
		return errors.New("daemon requires a scheduler, sink and deliverer")
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := c.sync(sigCtx, ctx)
	if err != nil {
		return err
	}
	ctx.Printf("Synced %d reminder(s), removed %d orphaned\n", report.scheduled, report.orphaned)
	if report.failed > 0 {
		ctx.Printf("%s %d reminder(s) could not be scheduled (see log)\n", cli.WarningStyle.Render("⚠"), report.failed)
	}
	if !ctx.Deliverer.Available() {
		ctx.Printf("%s the tray app is not running; fired reminders will only be logged\n", cli.WarningStyle.Render("⚠"))
	}

	opts := []dispatch.Option{
		dispatch.WithLocation(ctx.Now().Location()),
		dispatch.WithReloadInterval(ctx.Settings.ReloadInterval),
	}
	if path := ctx.Store.GetConfigPath(); path != postgres.ConfigPath {
		opts = append(opts, dispatch.WithWatchPath(path))
	}
	d := dispatch.New(ctx.Sink, ctx.Deliverer, ctx.Scheduler, opts...)

	if c.Once {
		defer d.Stop()
		if err := d.Reload(sigCtx); err != nil {
			logger.Warn("Some reminders could not be armed", "error", err)
		}
		calendar, oneShot := d.Armed()
		ctx.Printf("Armed %d calendar and %d one-shot reminder(s)\n", calendar, oneShot)
		return nil
	}

	ctx.Println("Reminder daemon running. Press Ctrl+C to stop.")
	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return d.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				calendar, oneShot := d.Armed()
				logger.Info("Daemon heartbeat", "calendar", calendar, "oneShot", oneShot)
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("daemon stopped: %w", err)
	}
	ctx.Println("Reminder daemon stopped.")
	return nil
}

type syncSummary struct {
	scheduled, failed, orphaned int
}

// sync re-registers every habit's reminders. With notifications disabled
// every registration is removed.
func (c *DaemonCmd) sync(ctx context.Context, appCtx *cli.Context) (syncSummary, error) {
	var habits []models.Habit
	if appCtx.Settings.NotificationsEnabled {
		var err error
		habits, err = appCtx.Store.GetAllHabits()
		if err != nil {
			return syncSummary{}, err
		}
	}

	report := appCtx.Scheduler.SyncAll(ctx, habits)
	if report.Err != nil {
		logger.Warn("Reminder sync finished with errors", "error", report.Err)
	}
	return syncSummary{scheduled: report.Scheduled(), failed: report.Failed(), orphaned: report.Orphaned}, nil
}
