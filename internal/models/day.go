package models

import (
	"fmt"
	"strings"
	"time"
)

// Day is a canonical short weekday token.
type Day string

const (
	Monday    Day = "M"
	Tuesday   Day = "Tu"
	Wednesday Day = "W"
	Thursday  Day = "Th"
	Friday    Day = "F"
	Saturday  Day = "Sa"
	Sunday    Day = "Su"
)

// Days lists the canonical tokens in display order (Monday first).
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// dayWeekdays is the single mapping between day tokens and time.Weekday
// (0 = Sunday). Cron day-of-week uses the same numbering.
var dayWeekdays = map[Day]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

var weekdayDays = map[time.Weekday]Day{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// dayAliases maps accepted input spellings to canonical tokens. The legacy
// single-letter scheme (S,M,T,W,R,F,A) does not collide with the canonical one.
var dayAliases = map[string]Day{
	"m": Monday, "mon": Monday, "monday": Monday,
	"tu": Tuesday, "t": Tuesday, "tue": Tuesday, "tues": Tuesday, "tuesday": Tuesday,
	"w": Wednesday, "wed": Wednesday, "wednesday": Wednesday,
	"th": Thursday, "r": Thursday, "thu": Thursday, "thur": Thursday, "thurs": Thursday, "thursday": Thursday,
	"f": Friday, "fri": Friday, "friday": Friday,
	"sa": Saturday, "a": Saturday, "sat": Saturday, "saturday": Saturday,
	"su": Sunday, "s": Sunday, "sun": Sunday, "sunday": Sunday,
}

// ParseDay normalizes a day token, legacy token, or English day name.
func ParseDay(s string) (Day, error) {
	if d, ok := dayAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("invalid day: %q", s)
}

// DayFromWeekday returns the canonical token for a time.Weekday.
func DayFromWeekday(wd time.Weekday) Day {
	return weekdayDays[wd]
}

// Weekday returns the time.Weekday for a canonical token.
func (d Day) Weekday() (time.Weekday, bool) {
	wd, ok := dayWeekdays[d]
	return wd, ok
}

// Valid reports whether d is a canonical token.
func (d Day) Valid() bool {
	_, ok := dayWeekdays[d]
	return ok
}

// Index returns the Monday-first display position of d, or -1.
func (d Day) Index() int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return -1
}

// Name returns the full English name ("Monday").
func (d Day) Name() string {
	wd, ok := d.Weekday()
	if !ok {
		return string(d)
	}
	return wd.String()
}
