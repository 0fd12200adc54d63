package progression

import "time"

// DayUTC truncates t to midnight of its UTC calendar date.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole UTC calendar days from earlier to later.
// Time of day is ignored on both sides.
func DaysBetween(earlier, later time.Time) int {
	return int(DayUTC(later).Sub(DayUTC(earlier)).Hours() / 24)
}

// StreakState is the persisted streak portion of a learner record.
type StreakState struct {
	Current      int
	Longest      int
	LastActivity *time.Time
}

// StreakChange describes what NextStreak decided.
type StreakChange int

const (
	StreakUnchanged StreakChange = iota
	StreakStarted
	StreakExtended
	StreakReset
)

func (c StreakChange) String() string {
	switch c {
	case StreakStarted:
		return "started"
	case StreakExtended:
		return "extended"
	case StreakReset:
		return "reset"
	default:
		return "unchanged"
	}
}

// NextStreak applies one activity at now to prev.
//
//	no previous activity -> 1
//	same day             -> unchanged
//	previous day         -> +1
//	older                -> 1
//
// A last activity later than now (clock skew) counts as the same day.
// Longest never decreases.
func NextStreak(prev StreakState, now time.Time) (StreakState, StreakChange) {
	today := DayUTC(now)
	next := prev

	var change StreakChange
	if prev.LastActivity == nil {
		next.Current = 1
		change = StreakStarted
	} else {
		switch gap := DaysBetween(*prev.LastActivity, now); {
		case gap <= 0:
			return prev, StreakUnchanged
		case gap == 1:
			next.Current = prev.Current + 1
			change = StreakExtended
		default:
			next.Current = 1
			change = StreakReset
		}
	}

	next.LastActivity = &today
	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	return next, change
}

// StreakExpired reports whether a positive streak should already have been
// reset because more than one day passed since the last activity.
func StreakExpired(s StreakState, now time.Time) bool {
	if s.Current <= 0 {
		return false
	}
	if s.LastActivity == nil {
		return true
	}
	return DaysBetween(*s.LastActivity, now) > 1
}

// ActiveOn reports whether the last activity falls on the UTC date of now.
func ActiveOn(last *time.Time, now time.Time) bool {
	return last != nil && DayUTC(*last).Equal(DayUTC(now))
}
