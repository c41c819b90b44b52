// Package streak computes daily completion streaks. Evaluate is a pure
// function of its inputs so the rules can be tested without a clock or a
// database.
package streak

import "time"

// Evaluate returns the streak count and last-completion timestamp after a
// task completion at now. last is nil when the user has never completed a
// task before.
//
// A completion on the same calendar day keeps the streak, a completion on
// the immediately following day extends it, and anything else (a gap of two
// or more days, or a clock that moved backwards across a day boundary)
// resets it to 1. Calendar days are taken in now's location.
func Evaluate(count int, last *time.Time, now time.Time) (int, time.Time) {
	if last == nil {
		return 1, now
	}

	lastDay := startOfDay(last.In(now.Location()))
	today := startOfDay(now)

	switch {
	case today.Equal(lastDay):
		if count < 1 {
			count = 1
		}
		return count, now
	case today.Equal(lastDay.AddDate(0, 0, 1)):
		return count + 1, now
	default:
		return 1, now
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
