package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/microhabit/internal/models"
)

func newTestManager(t *testing.T, start time.Time) (*Manager, *time.Time) {
	t.Helper()
	now := start
	m := NewManager(t.TempDir())
	m.clock = func() time.Time { return now }
	return m, &now
}

func sampleHabits() []models.Habit {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []models.Habit{
		{
			ID:            "h1",
			Name:          "Stretch",
			Icon:          "🧘",
			Streak:        2,
			LongestStreak: 5,
			History:       models.History{"2026-03-09": true, "2026-03-10": true},
			DayNotifications: []models.DayNotification{
				{Day: models.Monday, Times: []string{"07:00", "18:30"}},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
		{
			ID:               "h2",
			Name:             "Read",
			Icon:             "📚",
			History:          models.History{},
			DayNotifications: []models.DayNotification{},
			CreatedAt:        created.Add(time.Hour),
			UpdatedAt:        created.Add(time.Hour),
		},
	}
}

func TestCreateAndReadBackup(t *testing.T) {
	m, _ := newTestManager(t, time.Date(2026, 3, 11, 8, 30, 0, 0, time.Local))

	path, err := m.CreateBackup(sampleHabits())
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Base(path) != "microhabit-20260311-0830.json" {
		t.Errorf("unexpected backup name %s", filepath.Base(path))
	}

	got, err := m.ReadBackup(path)
	if err != nil {
		t.Fatalf("ReadBackup failed: %v", err)
	}
	if diff := cmp.Diff(sampleHabits(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateBackupUniqueNames(t *testing.T) {
	m, _ := newTestManager(t, time.Date(2026, 3, 11, 8, 30, 15, 0, time.Local))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := m.CreateBackup(nil)
		if err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 backups, got %d", len(backups))
	}
}

func TestListBackupsNewestFirst(t *testing.T) {
	m, now := newTestManager(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.Local))

	for i := 0; i < 3; i++ {
		if _, err := m.CreateBackup(nil); err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
		*now = now.Add(time.Hour)
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first: %v after %v", backups[i].Timestamp, backups[i-1].Timestamp)
		}
	}

	latest, ok, err := m.Latest()
	if err != nil || !ok {
		t.Fatalf("Latest: ok=%v err=%v", ok, err)
	}
	if latest.Timestamp.Hour() != 10 {
		t.Errorf("expected latest backup at 10:00, got %v", latest.Timestamp)
	}
}

func TestRotation(t *testing.T) {
	m, now := newTestManager(t, time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local))

	for i := 0; i < MaxBackups+3; i++ {
		if _, err := m.CreateBackup(nil); err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
		*now = now.AddDate(0, 0, 1)
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", MaxBackups, len(backups))
	}
	oldest := backups[len(backups)-1].Timestamp
	if want := time.Date(2026, 3, 4, 8, 0, 0, 0, time.Local); !oldest.Equal(want) {
		t.Errorf("oldest kept backup = %v, want %v", oldest, want)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	m, _ := newTestManager(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.Local))
	if _, err := m.CreateBackup(nil); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	for _, name := range []string{"notes.txt", "microhabit-garbage.json", "microhabit-20260311-0800.db"} {
		if err := os.WriteFile(filepath.Join(m.GetBackupDir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestListBackupsMissingDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope"))
	backups, err := m.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
	if _, ok, _ := m.Latest(); ok {
		t.Error("expected no latest backup")
	}
}

func TestReadBackupInvalid(t *testing.T) {
	m, _ := newTestManager(t, time.Now())
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ReadBackup(path); err == nil {
		t.Error("expected error for corrupted backup")
	}
	if _, err := m.ReadBackup(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing backup")
	}
}
