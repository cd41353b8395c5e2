package constants

import "time"

// TriggerKind identifies how a reminder registration fires
type TriggerKind string

// StrategyName identifies a reminder scheduling strategy
type StrategyName string

const (
	AppName            = "microhabit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/microhabit"
	DefaultDBPath      = "~/.config/microhabit/microhabit.db"
	DefaultSettings    = "~/.config/microhabit/settings.yaml"
	Version            = "v0.3.0"

	// DateFormat is the history key format (YYYY-MM-DD, local calendar date)
	DateFormat = "2006-01-02"

	// TimeFormat is the reminder time-of-day format (HH:MM, 24-hour)
	TimeFormat = "15:04"

	// Habit limits
	MaxHabitNameLength      = 50
	MaxTimesPerDay          = 5
	DefaultHabitIcon        = "✅"
	DefaultHistoryDays      = 7
	DefaultCompletionWindow = 7

	// Reminder key prefix; keys are habit_<habitID>_<day>_<HHMM>
	ReminderKeyPrefix = "habit_"

	// Trigger kinds
	TriggerCalendar TriggerKind = "calendar"
	TriggerDate     TriggerKind = "date"

	// Strategies
	StrategyCalendar StrategyName = "calendar"
	StrategyOneShot  StrategyName = "one-shot"

	// Notify constants
	NotifierLockfileName   = "microhabit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.microhabit"
	TrayExecutablePrefix   = "microhabit-tray"

	// Dispatcher constants
	DefaultReloadInterval = time.Minute
	WatchDebounce         = 250 * time.Millisecond
)
