package models

import (
	"encoding/json"
	"testing"
)

func TestHistory_UnmarshalTreatsNonBooleanAsFalse(t *testing.T) {
	var h History
	data := []byte(`{"2026-01-01": true, "2026-01-02": "yes", "2026-01-03": 1, "2026-01-04": null, "2026-01-05": false}`)
	if err := json.Unmarshal(data, &h); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !h.Done("2026-01-01") {
		t.Error("expected 2026-01-01 to be done")
	}
	for _, d := range []string{"2026-01-02", "2026-01-03", "2026-01-04", "2026-01-05", "2026-01-06"} {
		if h.Done(d) {
			t.Errorf("expected %s to be incomplete", d)
		}
	}
}

func TestHabit_CloneDoesNotAlias(t *testing.T) {
	h := Habit{
		ID:      "h1",
		History: History{"2026-01-01": true},
		DayNotifications: []DayNotification{
			{Day: Monday, Times: []string{"09:00"}},
		},
	}

	c := h.Clone()
	c.History["2026-01-02"] = true
	c.DayNotifications[0].Times[0] = "10:00"

	if h.History.Done("2026-01-02") {
		t.Error("clone history aliases original")
	}
	if h.DayNotifications[0].Times[0] != "09:00" {
		t.Error("clone day notifications alias original")
	}
}

func TestHabit_TimesForSortsAndHasReminder(t *testing.T) {
	h := Habit{
		DayNotifications: []DayNotification{
			{Day: Wednesday, Times: []string{"18:30", "07:15"}},
		},
	}

	times := h.TimesFor(Wednesday)
	if len(times) != 2 || times[0] != "07:15" || times[1] != "18:30" {
		t.Errorf("TimesFor(W) = %v, want [07:15 18:30]", times)
	}
	if h.TimesFor(Monday) != nil {
		t.Error("expected no times for Monday")
	}
	if !h.HasReminder(Wednesday, "18:30") {
		t.Error("expected reminder at W 18:30")
	}
	if h.HasReminder(Wednesday, "09:00") {
		t.Error("unexpected reminder at W 09:00")
	}
	if h.ReminderCount() != 2 {
		t.Errorf("ReminderCount() = %d, want 2", h.ReminderCount())
	}
}
