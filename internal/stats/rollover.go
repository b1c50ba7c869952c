package stats

import (
	"time"

	"github.com/verte-zerg/tomato/internal/model"
)

// Rollover starts a new day when the stored date is not now's calendar day.
// Today's counters and the weekday buckets of every day since the stored
// date are cleared; totals and achievements are kept. A streak whose last
// active day is before yesterday is broken. It reports whether s changed.
func Rollover(s *model.Stats, now time.Time) bool {
	changed := false
	today := model.DayKey(now)
	if len(s.Week) != model.DaysPerWeek {
		s.Normalize(now)
		changed = true
	}
	if s.Today.Date != today {
		stale := 1
		if last, ok := model.ParseDay(s.Today.Date, now.Location()); ok {
			if gap := daysBetween(last, now); gap > 1 {
				stale = min(gap, model.DaysPerWeek)
			}
		}
		for i := 0; i < stale; i++ {
			s.Week[now.AddDate(0, 0, -i).Weekday()] = model.WeekBucket{}
		}
		s.Today = model.DayStats{Date: today}
		changed = true
	}
	if s.Total.CurrentStreak > 0 {
		last, ok := model.ParseDay(s.Total.LastActiveDate, now.Location())
		if !ok || daysBetween(last, now) > 1 {
			s.Total.CurrentStreak = 0
			changed = true
		}
	}
	return changed
}

// daysBetween counts calendar days from a to b, ignoring clock time.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
