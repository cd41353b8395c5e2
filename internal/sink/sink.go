// Package sink holds reminder registrations the way a platform notification
// service would: keyed, replace-on-schedule, listable.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
)

// ReminderStore is the registration half of storage.Provider.
type ReminderStore interface {
	SaveReminder(models.ScheduledReminder) error
	DeleteReminder(key string) error
	GetAllReminders() ([]models.ScheduledReminder, error)
}

// StoreSink persists registrations so they outlive the process that made
// them; the daemon picks them up from the same store.
type StoreSink struct {
	store ReminderStore
	now   func() time.Time
}

func NewStoreSink(store ReminderStore) *StoreSink {
	return &StoreSink{store: store, now: time.Now}
}

func (s *StoreSink) Schedule(ctx context.Context, key string, trigger models.Trigger, content models.ReminderContent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r := models.ScheduledReminder{Key: key, Trigger: trigger, Content: content, CreatedAt: s.now()}
	if err := s.store.SaveReminder(r); err != nil {
		return "", err
	}
	return key, nil
}

func (s *StoreSink) Cancel(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.DeleteReminder(key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func (s *StoreSink) ListScheduled(ctx context.Context) ([]models.ScheduledReminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.GetAllReminders()
}

// MemorySink keeps registrations in process memory.
type MemorySink struct {
	mu      sync.Mutex
	entries map[string]models.ScheduledReminder
	now     func() time.Time
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		entries: make(map[string]models.ScheduledReminder),
		now:     time.Now,
	}
}

func (m *MemorySink) Schedule(ctx context.Context, key string, trigger models.Trigger, content models.ReminderContent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", fmt.Errorf("reminder key is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = models.ScheduledReminder{Key: key, Trigger: trigger, Content: content, CreatedAt: m.now()}
	return key, nil
}

func (m *MemorySink) Cancel(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemorySink) ListScheduled(ctx context.Context) ([]models.ScheduledReminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ScheduledReminder, 0, len(m.entries))
	for _, r := range m.entries {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Len returns the number of registrations held.
func (m *MemorySink) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
