package gamification

// StreakKind names the branch NextStreak took.
type StreakKind string

const (
	StreakSkipped   StreakKind = "skipped"   // a check-in already exists for today
	StreakFirst     StreakKind = "first"     // no previous activity
	StreakContinued StreakKind = "continued" // last activity was yesterday
	StreakReset     StreakKind = "reset"     // gap of two or more days
	StreakSameDay   StreakKind = "same_day"  // already active today
)

// StreakInput is the profile state the streak rule reads.
type StreakInput struct {
	Today          Day
	LastActivity   *Day
	Current        int
	Longest        int
	CheckedInToday bool
}

// StreakResult is the state to write back. When Updated is false nothing
// must be persisted.
type StreakResult struct {
	Kind         StreakKind `json:"kind"`
	Updated      bool       `json:"updated"`
	Current      int        `json:"current_streak"`
	Longest      int        `json:"longest_streak"`
	LastActivity *Day       `json:"last_activity_date"`
}

// NextStreak applies the daily streak rule. It is a pure function of its
// input and is idempotent per day.
func NextStreak(in StreakInput) StreakResult {
	if in.CheckedInToday {
		return StreakResult{
			Kind:         StreakSkipped,
			Current:      in.Current,
			Longest:      in.Longest,
			LastActivity: in.LastActivity,
		}
	}

	yesterday := in.Today.AddDays(-1)
	var (
		next int
		kind StreakKind
	)
	switch {
	case in.LastActivity == nil || in.LastActivity.IsZero():
		next, kind = 1, StreakFirst
	case *in.LastActivity == yesterday:
		next, kind = in.Current+1, StreakContinued
	case *in.LastActivity != in.Today:
		next, kind = 1, StreakReset
	default:
		next, kind = in.Current, StreakSameDay
	}

	longest := in.Longest
	if next > longest {
		longest = next
	}
	today := in.Today
	return StreakResult{
		Kind:         kind,
		Updated:      true,
		Current:      next,
		Longest:      longest,
		LastActivity: &today,
	}
}

// ActivityState is the per-day state of a user.
type ActivityState string

const (
	NoActivityToday       ActivityState = "no_activity_today"
	ActivityRecordedToday ActivityState = "activity_recorded_today"
)

// DayState derives the activity state from the last activity date. It resets
// lazily: a date from any earlier day reads as NoActivityToday.
func DayState(last *Day, today Day) ActivityState {
	if last != nil && *last == today {
		return ActivityRecordedToday
	}
	return NoActivityToday
}

// EffectiveStreak is the streak to display: a streak whose last activity is
// older than yesterday is already broken even though it is only rewritten on
// the next qualifying event.
func EffectiveStreak(last *Day, current int, today Day) int {
	if last == nil || last.IsZero() {
		return 0
	}
	if *last == today || *last == today.AddDays(-1) {
		return current
	}
	return 0
}
