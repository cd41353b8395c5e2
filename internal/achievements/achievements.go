package achievements

import "sort"

// Achievement is a milestone unlocked by reaching a streak length
type Achievement struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Streak  int    `json:"streak"`
	Icon    string `json:"icon"`
}

// Progress describes how far a streak is between two milestones
type Progress struct {
	Current    int     // threshold of the highest unlocked milestone (0 if none)
	Next       int     // threshold of the next milestone (equals the streak when all are unlocked)
	Percentage float64 // 0-100
}

// All is the milestone table, ordered by threshold.
var All = []Achievement{
	{ID: "first_day", Title: "Getting Started!", Message: "You completed your first habit! Keep it up!", Streak: 1, Icon: "🌱"},
	{ID: "three_day", Title: "Building Momentum!", Message: "3-day streak! You're building a great habit!", Streak: 3, Icon: "⭐"},
	{ID: "week_streak", Title: "Week Warrior!", Message: "7-day streak! You're unstoppable!", Streak: 7, Icon: "💪"},
	{ID: "two_week", Title: "Consistency King!", Message: "14-day streak! You're making it a lifestyle!", Streak: 14, Icon: "👑"},
	{ID: "month_streak", Title: "Habit Master!", Message: "30-day streak! You've mastered this habit!", Streak: 30, Icon: "🏆"},
	{ID: "hundred_day", Title: "Century Club!", Message: "100-day streak! You're legendary!", Streak: 100, Icon: "🔥"},
}

func init() {
	sort.Slice(All, func(i, j int) bool { return All[i].Streak < All[j].Streak })
}

// ForStreak returns the highest milestone at or below streak.
func ForStreak(streak int) (Achievement, bool) {
	var found Achievement
	ok := false
	for _, a := range All {
		if a.Streak <= streak {
			found, ok = a, true
		}
	}
	return found, ok
}

// Next returns the lowest milestone above streak.
func Next(streak int) (Achievement, bool) {
	for _, a := range All {
		if a.Streak > streak {
			return a, true
		}
	}
	return Achievement{}, false
}

// CheckForNew returns the milestone unlocked by moving from oldStreak to newStreak, if any.
func CheckForNew(oldStreak, newStreak int) (Achievement, bool) {
	newA, ok := ForStreak(newStreak)
	if !ok {
		return Achievement{}, false
	}
	oldA, hadOld := ForStreak(oldStreak)
	if hadOld && newA.Streak <= oldA.Streak {
		return Achievement{}, false
	}
	return newA, true
}

// ProgressFor reports progress from the current milestone toward the next one.
func ProgressFor(streak int) Progress {
	next, ok := Next(streak)
	if !ok {
		return Progress{Current: streak, Next: streak, Percentage: 100}
	}

	current := 0
	if a, ok := ForStreak(streak); ok {
		current = a.Streak
	}

	pct := float64(streak-current) / float64(next.Streak-current) * 100
	if pct > 100 {
		pct = 100
	}
	return Progress{Current: current, Next: next.Streak, Percentage: pct}
}

// StreakEmoji returns the badge shown next to a streak count.
func StreakEmoji(streak int) string {
	if a, ok := ForStreak(streak); ok {
		return a.Icon
	}
	return "🌱"
}

// StreakMessage returns a short encouragement for a streak count.
func StreakMessage(streak int) string {
	switch {
	case streak <= 0:
		return "Start your journey today!"
	case streak == 1:
		return "Great start!"
	case streak < 7:
		return "Building momentum!"
	case streak < 14:
		return "You're on fire!"
	case streak < 30:
		return "Incredible consistency!"
	case streak < 100:
		return "You're a habit master!"
	default:
		return "Legendary!"
	}
}
