package models

import (
	"time"

	"github.com/julianstephens/microhabit/internal/constants"
)

// Trigger describes when a registered reminder fires.
//
// Calendar triggers repeat natively every week on Weekday at Hour:Minute.
// Date triggers fire once at At.
type Trigger struct {
	Kind    constants.TriggerKind `json:"kind"`
	Weekday time.Weekday          `json:"weekday"`
	Hour    int                   `json:"hour"`
	Minute  int                   `json:"minute"`
	Repeats bool                  `json:"repeats"`
	At      time.Time             `json:"at,omitempty"`
}

// ReminderPayload correlates a fired reminder back to its habit entry
type ReminderPayload struct {
	HabitID string `json:"habitId"`
	Day     Day    `json:"day"`
	Time    string `json:"time"` // HH:MM
}

// ReminderContent is what the user sees when a reminder fires
type ReminderContent struct {
	Title   string          `json:"title"`
	Body    string          `json:"body"`
	Payload ReminderPayload `json:"data"`
}

// ScheduledReminder is one registration held by the notification sink
type ScheduledReminder struct {
	Key       string          `json:"key"`
	Trigger   Trigger         `json:"trigger"`
	Content   ReminderContent `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
}

// IsOneShot returns true if this registration is consumed when it fires
func (r ScheduledReminder) IsOneShot() bool {
	return r.Trigger.Kind == constants.TriggerDate
}
