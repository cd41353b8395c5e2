package backups

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/config"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/reminders"
	"github.com/julianstephens/microhabit/internal/sink"
	"github.com/julianstephens/microhabit/internal/storage/sqlite"
)

func setupContext(t *testing.T) (*cli.Context, *sink.MemorySink) {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s := sink.NewMemorySink()
	ctx := &cli.Context{
		Store:     store,
		Sink:      s,
		Settings:  config.Default(),
		ConfigDir: dir,
		Location:  time.UTC,
		Clock:     func() time.Time { return time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC) },
		Out:       &bytes.Buffer{},
	}
	ctx.Scheduler = reminders.New(s, store, nil, reminders.WithClock(ctx.Now))
	return ctx, s
}

func newHabit(id, name string, dns ...models.DayNotification) models.Habit {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if dns == nil {
		dns = []models.DayNotification{}
	}
	return models.Habit{
		ID:               id,
		Name:             name,
		Icon:             "✅",
		History:          models.History{},
		DayNotifications: dns,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, _ := setupContext(t)
	if err := ctx.SaveHabit(newHabit("h1", "Read")); err != nil {
		t.Fatal(err)
	}

	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	out := ctx.Out.(*bytes.Buffer)
	if !strings.Contains(out.String(), "1 habit(s)") {
		t.Errorf("unexpected output: %s", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "1 total") {
		t.Errorf("expected one backup listed, got: %s", out.String())
	}
}

func TestBackupListEmpty(t *testing.T) {
	ctx, _ := setupContext(t)
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(ctx.Out.(*bytes.Buffer).String(), "No backups found.") {
		t.Error("expected empty listing message")
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, s := setupContext(t)
	read := newHabit("h1", "Read", models.DayNotification{Day: models.Monday, Times: []string{"07:00"}})
	if err := ctx.SaveHabit(read); err != nil {
		t.Fatal(err)
	}
	snapshot, err := ctx.Backups().CreateBackup([]models.Habit{read})
	if err != nil {
		t.Fatal(err)
	}

	// changes made after the snapshot
	walk := newHabit("h2", "Walk", models.DayNotification{Day: models.Friday, Times: []string{"18:00"}})
	if err := ctx.SaveHabit(walk); err != nil {
		t.Fatal(err)
	}
	ctx.SyncReminders(t.Context(), walk)

	cmd := &BackupRestoreCmd{BackupFile: snapshot, Yes: true}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	habits, err := ctx.Habits()
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 || habits[0].ID != "h1" {
		t.Fatalf("expected only h1 after restore, got %+v", habits)
	}

	regs, err := s.ListScheduled(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 1 || regs[0].Content.Payload.HabitID != "h1" {
		t.Errorf("expected only h1 reminders after restore, got %+v", regs)
	}

	backups, err := ctx.Backups().ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Errorf("expected pre-restore backup to be created, got %d backups", len(backups))
	}
}

func TestBackupRestoreNotFound(t *testing.T) {
	ctx, _ := setupContext(t)
	if err := (&BackupRestoreCmd{Yes: true}).Run(ctx); err == nil {
		t.Error("expected error with no backups")
	}
	if err := (&BackupRestoreCmd{BackupFile: "missing.json", Yes: true}).Run(ctx); err == nil {
		t.Error("expected error for missing file")
	}
}
