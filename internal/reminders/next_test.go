package reminders

import (
	"testing"
	"time"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
)

func TestNextOccurrence(t *testing.T) {
	wed := func(h, m int) time.Time { return time.Date(2026, 3, 11, h, m, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		weekday time.Weekday
		hour    int
		minute  int
		now     time.Time
		want    time.Time
	}{
		{
			name:    "later today",
			weekday: time.Wednesday, hour: 9, minute: 0,
			now:  wed(8, 0),
			want: wed(9, 0),
		},
		{
			name:    "just passed rolls a week",
			weekday: time.Wednesday, hour: 9, minute: 0,
			now:  wed(9, 1),
			want: time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "exactly now is not in the future",
			weekday: time.Wednesday, hour: 9, minute: 0,
			now:  wed(9, 0),
			want: time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "tomorrow",
			weekday: time.Thursday, hour: 7, minute: 30,
			now:  wed(23, 59),
			want: time.Date(2026, 3, 12, 7, 30, 0, 0, time.UTC),
		},
		{
			name:    "yesterday's weekday is six days out",
			weekday: time.Tuesday, hour: 12, minute: 0,
			now:  wed(8, 0),
			want: time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "sunday across a month boundary",
			weekday: time.Sunday, hour: 10, minute: 15,
			now:  time.Date(2026, 3, 30, 8, 0, 0, 0, time.UTC), // Monday
			want: time.Date(2026, 4, 5, 10, 15, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.weekday, tt.hour, tt.minute, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
			if !got.After(tt.now) || got.Sub(tt.now) > 7*24*time.Hour {
				t.Errorf("NextOccurrence() = %v is not within (now, now+7d]", got)
			}
		})
	}
}

func TestNextOccurrenceEveryDay(t *testing.T) {
	for _, day := range models.Days {
		wd, _ := day.Weekday()
		got := NextOccurrence(wd, 6, 0, now)
		if got.Weekday() != wd {
			t.Errorf("%s: landed on %s", day.Name(), got.Weekday())
		}
		if got.Hour() != 6 || got.Minute() != 0 {
			t.Errorf("%s: wrong wall clock %v", day.Name(), got)
		}
	}
}

func TestNextOccurrenceKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database not available: %v", err)
	}
	// DST starts Sunday 2026-03-08 in New York
	sat := time.Date(2026, 3, 7, 10, 0, 0, 0, loc)

	got := NextOccurrence(time.Sunday, 9, 0, sat)
	if got.Hour() != 9 || got.Day() != 8 {
		t.Errorf("NextOccurrence() = %v, want 2026-03-08 09:00 local", got)
	}
	if got.Sub(sat) != 22*time.Hour {
		t.Errorf("expected 22h elapsed across the DST jump, got %v", got.Sub(sat))
	}
}

func TestNextFire(t *testing.T) {
	at := time.Date(2026, 3, 13, 18, 0, 0, 0, time.UTC)
	oneShot := models.Trigger{Kind: constants.TriggerDate, At: at}
	if got := NextFire(oneShot, now); !got.Equal(at) {
		t.Errorf("NextFire(date) = %v, want %v", got, at)
	}

	calendar := CalendarStrategy{}.Trigger(time.Friday, 18, 0, now)
	if got := NextFire(calendar, now); !got.Equal(at) {
		t.Errorf("NextFire(calendar) = %v, want %v", got, at)
	}
}
