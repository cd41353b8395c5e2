package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "microhabit.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testHabit(id, name string) models.Habit {
	created := time.Date(2026, 3, 1, 8, 30, 0, 123000000, time.UTC)
	return models.Habit{
		ID:            id,
		Name:          name,
		Icon:          "📚",
		Streak:        4,
		LongestStreak: 9,
		History:       models.History{"2026-03-08": true, "2026-03-09": false, "2026-03-10": true},
		DayNotifications: []models.DayNotification{
			{Day: models.Tuesday, Times: []string{"07:00"}},
			{Day: models.Sunday, Times: []string{"10:00", "20:30"}},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
}

func TestTableExists(t *testing.T) {
	store := setupTestStore(t)

	exists, err := store.tableExists("habits")
	if err != nil || !exists {
		t.Errorf("tableExists(habits) = %v, %v", exists, err)
	}
	exists, err = store.tableExists("HABITS")
	if err != nil || !exists {
		t.Errorf("tableExists should be case-insensitive, got %v, %v", exists, err)
	}
	exists, err = store.tableExists("nonexistent_table")
	if err != nil || exists {
		t.Errorf("tableExists(nonexistent_table) = %v, %v", exists, err)
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	h := testHabit("h1", "Read")

	if err := store.UpsertHabit(h); err != nil {
		t.Fatalf("UpsertHabit failed: %v", err)
	}

	got, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("habit mismatch (-want +got):\n%s", diff)
	}

	byName, err := store.GetHabitByName("read")
	if err != nil {
		t.Fatalf("GetHabitByName failed: %v", err)
	}
	if byName.ID != "h1" {
		t.Errorf("GetHabitByName returned %s", byName.ID)
	}
}

func TestUpsertUpdatesInPlace(t *testing.T) {
	store := setupTestStore(t)
	h := testHabit("h1", "Read")
	if err := store.UpsertHabit(h); err != nil {
		t.Fatal(err)
	}

	h.Streak = 5
	h.LongestStreak = 10
	h.History["2026-03-11"] = true
	h.DayNotifications = nil
	if err := store.UpsertHabit(h); err != nil {
		t.Fatal(err)
	}

	habits, err := store.GetAllHabits()
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}
	got := habits[0]
	if got.Streak != 5 || got.LongestStreak != 10 || !got.History.Done("2026-03-11") {
		t.Errorf("update not persisted: %+v", got)
	}
	if got.DayNotifications == nil || len(got.DayNotifications) != 0 {
		t.Errorf("nil day notifications should load as empty, got %#v", got.DayNotifications)
	}
}

func TestGetAllHabitsOrder(t *testing.T) {
	store := setupTestStore(t)
	later := testHabit("h2", "Walk")
	later.CreatedAt = later.CreatedAt.Add(24 * time.Hour)
	if err := store.UpsertHabit(later); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertHabit(testHabit("h1", "Read")); err != nil {
		t.Fatal(err)
	}

	habits, err := store.GetAllHabits()
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 2 || habits[0].ID != "h1" || habits[1].ID != "h2" {
		t.Errorf("unexpected order: %+v", habits)
	}
}

func TestDeleteHabit(t *testing.T) {
	store := setupTestStore(t)
	if err := store.UpsertHabit(testHabit("h1", "Read")); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	if _, err := store.GetHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetHabit after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteHabit("h1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteHabit error = %v, want ErrNotFound", err)
	}
}

func TestReminderRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	created := time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)

	calendar := models.ScheduledReminder{
		Key: "habit_h1_Tu_0700",
		Trigger: models.Trigger{
			Kind: constants.TriggerCalendar, Weekday: time.Tuesday, Hour: 7, Minute: 0, Repeats: true,
		},
		Content: models.ReminderContent{
			Title:   "📚 Time for: Read",
			Body:    "It's time to complete your habit: Read",
			Payload: models.ReminderPayload{HabitID: "h1", Day: models.Tuesday, Time: "07:00"},
		},
		CreatedAt: created,
	}
	oneShot := models.ScheduledReminder{
		Key: "habit_h1_Su_2030",
		Trigger: models.Trigger{
			Kind: constants.TriggerDate, Weekday: time.Sunday, Hour: 20, Minute: 30,
			At: time.Date(2026, 3, 15, 20, 30, 0, 0, time.UTC),
		},
		Content: models.ReminderContent{
			Title:   "📚 Time for: Read",
			Body:    "It's time to complete your habit: Read",
			Payload: models.ReminderPayload{HabitID: "h1", Day: models.Sunday, Time: "20:30"},
		},
		CreatedAt: created,
	}

	for _, r := range []models.ScheduledReminder{calendar, oneShot} {
		if err := store.SaveReminder(r); err != nil {
			t.Fatalf("SaveReminder(%s) failed: %v", r.Key, err)
		}
	}
	// same key replaces
	if err := store.SaveReminder(calendar); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetAllReminders()
	if err != nil {
		t.Fatalf("GetAllReminders failed: %v", err)
	}
	want := []models.ScheduledReminder{oneShot, calendar} // ordered by key
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("reminders mismatch (-want +got):\n%s", diff)
	}

	if err := store.DeleteReminder(calendar.Key); err != nil {
		t.Fatalf("DeleteReminder failed: %v", err)
	}
	if err := store.DeleteReminder(calendar.Key); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeleteReminder error = %v, want ErrNotFound", err)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("Load of a missing database should fail")
	}
	if _, err := store.GetAllHabits(); !errors.Is(err, storage.ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestLoadAfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "microhabit.db")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatal(err)
	}
	if err := first.UpsertHabit(testHabit("h1", "Read")); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer second.Close()
	if _, err := second.GetHabit("h1"); err != nil {
		t.Errorf("GetHabit after reload failed: %v", err)
	}

	applied, err := second.Migrate(nil)
	if err != nil || applied != 0 {
		t.Errorf("Migrate on current schema = %d, %v", applied, err)
	}
}

func TestGetAllHabitsReportsQueryFailure(t *testing.T) {
	store := setupTestStore(t)
	if err := store.UpsertHabit(testHabit("h1", "Read")); err != nil {
		t.Fatal(err)
	}

	// the handle stays set but every query now fails
	if err := store.db.Close(); err != nil {
		t.Fatal(err)
	}

	habits, err := store.GetAllHabits()
	if err == nil {
		t.Fatalf("expected error from closed database, got %d habits", len(habits))
	}
	if habits != nil {
		t.Errorf("expected no habits alongside the error, got %+v", habits)
	}
}

func TestGetAllHabitsBeforeSchema(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.db.Exec("DROP TABLE habits"); err != nil {
		t.Fatal(err)
	}

	habits, err := store.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits without schema: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected empty list, got %d", len(habits))
	}
}
