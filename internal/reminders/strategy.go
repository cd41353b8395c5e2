package reminders

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
)

var ErrUnknownStrategy = errors.New("unknown reminder strategy")

// Strategy decides what kind of platform trigger represents a weekly reminder.
type Strategy interface {
	Name() constants.StrategyName
	// Trigger builds the registration for weekday at hour:minute, relative to now.
	Trigger(weekday time.Weekday, hour, minute int, now time.Time) models.Trigger
	// RearmOnFire reports whether a fired reminder must be registered again.
	RearmOnFire() bool
}

// CalendarStrategy registers natively recurring weekly triggers.
type CalendarStrategy struct{}

func (CalendarStrategy) Name() constants.StrategyName { return constants.StrategyCalendar }

func (CalendarStrategy) Trigger(weekday time.Weekday, hour, minute int, _ time.Time) models.Trigger {
	return models.Trigger{
		Kind:    constants.TriggerCalendar,
		Weekday: weekday,
		Hour:    hour,
		Minute:  minute,
		Repeats: true,
	}
}

func (CalendarStrategy) RearmOnFire() bool { return false }

// OneShotStrategy registers a single absolute fire time and relies on
// Scheduler.OnFire to register the following week.
type OneShotStrategy struct{}

func (OneShotStrategy) Name() constants.StrategyName { return constants.StrategyOneShot }

func (OneShotStrategy) Trigger(weekday time.Weekday, hour, minute int, now time.Time) models.Trigger {
	return models.Trigger{
		Kind:    constants.TriggerDate,
		Weekday: weekday,
		Hour:    hour,
		Minute:  minute,
		At:      NextOccurrence(weekday, hour, minute, now),
	}
}

func (OneShotStrategy) RearmOnFire() bool { return true }

// StrategyFor returns the strategy registered under name.
func StrategyFor(name constants.StrategyName) (Strategy, error) {
	switch name {
	case constants.StrategyCalendar, "":
		return CalendarStrategy{}, nil
	case constants.StrategyOneShot:
		return OneShotStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
