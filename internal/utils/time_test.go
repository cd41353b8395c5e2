package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty is local", timezone: ""},
		{name: "Local", timezone: "Local"},
		{name: "UTC", timezone: "UTC"},
		{name: "IANA", timezone: "America/New_York"},
		{name: "invalid", timezone: "Not/AZone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation(%q) returned nil location", tt.timezone)
			}
			if ValidateTimezone(tt.timezone) == tt.wantErr {
				t.Errorf("ValidateTimezone(%q) disagrees with LoadLocation", tt.timezone)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input      string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{input: "00:00", wantHour: 0, wantMinute: 0},
		{input: "09:05", wantHour: 9, wantMinute: 5},
		{input: "23:59", wantHour: 23, wantMinute: 59},
		{input: "24:00", wantErr: true},
		{input: "9am", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h, m, err := ParseTimeOfDay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if h != tt.wantHour || m != tt.wantMinute {
				t.Errorf("ParseTimeOfDay(%q) = %d:%d, want %d:%d", tt.input, h, m, tt.wantHour, tt.wantMinute)
			}
		})
	}
}

func TestFormatTime12h(t *testing.T) {
	tests := map[string]string{
		"00:00": "12:00 AM",
		"09:05": "9:05 AM",
		"12:30": "12:30 PM",
		"18:45": "6:45 PM",
		"bad":   "bad",
	}
	for in, want := range tests {
		if got := FormatTime12h(in); got != want {
			t.Errorf("FormatTime12h(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCalendarDayAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// DST starts 2026-03-08 in New York
	start := CalendarDay(time.Date(2026, 3, 9, 0, 30, 0, 0, loc))
	prev := start.AddDate(0, 0, -1)
	if DateKey(prev) != "2026-03-08" {
		t.Errorf("expected 2026-03-08, got %s", DateKey(prev))
	}
	if DateKey(prev.AddDate(0, 0, -1)) != "2026-03-07" {
		t.Errorf("expected 2026-03-07, got %s", DateKey(prev.AddDate(0, 0, -1)))
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	got, err := ExpandHome("~/.config/microhabit/microhabit.db")
	if err != nil {
		t.Fatalf("ExpandHome failed: %v", err)
	}
	want := filepath.Join(home, ".config/microhabit/microhabit.db")
	if got != want {
		t.Errorf("ExpandHome = %q, want %q", got, want)
	}

	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
	if got, _ := ExpandHome("postgres://host/db"); got != "postgres://host/db" {
		t.Errorf("URL changed: %q", got)
	}
}
