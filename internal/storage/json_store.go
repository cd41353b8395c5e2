package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/microhabit/internal/models"
)

// JSONStore keeps habits and registrations in a single JSON document. The
// file is re-read when another process has modified it since the last access.
type JSONStore struct {
	path    string
	mu      sync.Mutex
	doc     *Document
	modTime time.Time
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.read()
	}

	s.doc = &Document{
		Version:   DocumentVersion,
		Habits:    []models.Habit{},
		Reminders: []models.ScheduledReminder{},
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) read() error {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'microhabit init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > DocumentVersion {
		return fmt.Errorf("storage version (%d) is newer than supported version (%d)", doc.Version, DocumentVersion)
	}

	for i, h := range doc.Habits {
		migrated, err := MigrateHabit(h)
		if err != nil {
			return fmt.Errorf("failed to load storage: %w", err)
		}
		doc.Habits[i] = migrated
	}

	s.doc = doc
	s.modTime = info.ModTime()
	return nil
}

// refresh reloads the document if the file changed on disk.
func (s *JSONStore) refresh() error {
	if s.doc == nil {
		return ErrNotLoaded
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat storage: %w", err)
	}
	if info.ModTime().Equal(s.modTime) {
		return nil
	}
	return s.read()
}

func (s *JSONStore) save() error {
	s.doc.Version = DocumentVersion
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	// write-then-rename so the daemon never observes a partial document
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
	}
	return nil
}

func (s *JSONStore) GetHabit(id string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return models.Habit{}, err
	}
	for _, h := range s.doc.Habits {
		if h.ID == id {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %s: %w", id, ErrNotFound)
}

func (s *JSONStore) GetHabitByName(name string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return models.Habit{}, err
	}
	for _, h := range s.doc.Habits {
		if strings.EqualFold(h.Name, name) {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, fmt.Errorf("habit %q: %w", name, ErrNotFound)
}

func (s *JSONStore) GetAllHabits() ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, err
	}
	habits := make([]models.Habit, 0, len(s.doc.Habits))
	for _, h := range s.doc.Habits {
		habits = append(habits, h.Clone())
	}
	SortHabits(habits)
	return habits, nil
}

func (s *JSONStore) UpsertHabit(habit models.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	h := habit.Clone()
	for i := range s.doc.Habits {
		if s.doc.Habits[i].ID == h.ID {
			s.doc.Habits[i] = h
			return s.save()
		}
	}
	s.doc.Habits = append(s.doc.Habits, h)
	return s.save()
}

func (s *JSONStore) DeleteHabit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	for i := range s.doc.Habits {
		if s.doc.Habits[i].ID == id {
			s.doc.Habits = append(s.doc.Habits[:i], s.doc.Habits[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("habit %s: %w", id, ErrNotFound)
}

func (s *JSONStore) SaveReminder(r models.ScheduledReminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	for i := range s.doc.Reminders {
		if s.doc.Reminders[i].Key == r.Key {
			s.doc.Reminders[i] = r
			return s.save()
		}
	}
	s.doc.Reminders = append(s.doc.Reminders, r)
	return s.save()
}

func (s *JSONStore) DeleteReminder(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return err
	}
	for i := range s.doc.Reminders {
		if s.doc.Reminders[i].Key == key {
			s.doc.Reminders = append(s.doc.Reminders[:i], s.doc.Reminders[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("reminder %s: %w", key, ErrNotFound)
}

func (s *JSONStore) GetAllReminders() ([]models.ScheduledReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refresh(); err != nil {
		return nil, err
	}
	out := make([]models.ScheduledReminder, len(s.doc.Reminders))
	copy(out, s.doc.Reminders)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// GetConfigPath returns the path to the underlying storage file.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
