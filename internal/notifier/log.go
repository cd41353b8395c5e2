package notifier

import (
	"context"
	"sync"

	"github.com/julianstephens/microhabit/internal/logger"
	"github.com/julianstephens/microhabit/internal/models"
)

// LogDeliverer records deliveries in the log instead of showing them.
// It backs dry_run and keeps what it delivered for inspection.
type LogDeliverer struct {
	mu        sync.Mutex
	delivered []models.ReminderContent
}

func NewLogDeliverer() *LogDeliverer {
	return &LogDeliverer{}
}

func (d *LogDeliverer) Available() bool { return true }

func (d *LogDeliverer) Deliver(ctx context.Context, content models.ReminderContent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Info("Reminder", "title", content.Title, "habit", content.Payload.HabitID,
		"day", content.Payload.Day, "time", content.Payload.Time)

	d.mu.Lock()
	d.delivered = append(d.delivered, content)
	d.mu.Unlock()
	return nil
}

// Delivered returns a copy of everything delivered so far.
func (d *LogDeliverer) Delivered() []models.ReminderContent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.ReminderContent, len(d.delivered))
	copy(out, d.delivered)
	return out
}
