package model

import "time"

// DayLayout is the calendar-day format used for persisted dates.
const DayLayout = "Mon Jan 02 2006"

// DaysPerWeek is the number of weekday buckets in Stats.Week.
const DaysPerWeek = 7

// DayKey formats the calendar day of t in its own location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a persisted day key in loc.
func ParseDay(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Stats is the persisted cumulative usage record.
type Stats struct {
	Today        DayStats     `json:"today"`
	Week         []WeekBucket `json:"week"`
	Total        TotalStats   `json:"total"`
	Achievements Achievements `json:"achievements"`
}

// DayStats holds counters for the current calendar day.
type DayStats struct {
	Pomodoros    int    `json:"pomodoros"`
	FocusMinutes int    `json:"time"`
	Date         string `json:"date"`
	Completed    int    `json:"completed"`
	Interrupted  int    `json:"interrupted"`
}

// WeekBucket holds counters for one weekday, indexed Sunday=0.
type WeekBucket struct {
	Pomodoros    int `json:"pomodoros"`
	FocusMinutes int `json:"time"`
}

// TotalStats holds all-time counters.
type TotalStats struct {
	Pomodoros      int        `json:"pomodoros"`
	FocusMinutes   int        `json:"time"`
	Sessions       int        `json:"sessions"`
	FirstSession   *time.Time `json:"firstSession"`
	BestDay        BestDay    `json:"bestDay"`
	CurrentStreak  int        `json:"currentStreak"`
	BestStreak     int        `json:"bestStreak"`
	LastActiveDate string     `json:"lastActiveDate,omitempty"`
}

// BestDay records the day with the most completed pomodoros.
type BestDay struct {
	Date      string `json:"date"`
	Pomodoros int    `json:"pomodoros"`
}

// DefaultStats returns an all-zero record dated now.
func DefaultStats(now time.Time) Stats {
	return Stats{
		Today: DayStats{Date: DayKey(now)},
		Week:  make([]WeekBucket, DaysPerWeek),
	}
}

// Normalize repairs structural damage in a loaded record.
func (s *Stats) Normalize(now time.Time) {
	if len(s.Week) != DaysPerWeek {
		week := make([]WeekBucket, DaysPerWeek)
		copy(week, s.Week)
		s.Week = week
	}
	if s.Today.Date == "" {
		s.Today.Date = DayKey(now)
	}
	clamp := func(v *int) {
		if *v < 0 {
			*v = 0
		}
	}
	clamp(&s.Today.Pomodoros)
	clamp(&s.Today.FocusMinutes)
	clamp(&s.Today.Completed)
	clamp(&s.Today.Interrupted)
	clamp(&s.Total.Pomodoros)
	clamp(&s.Total.FocusMinutes)
	clamp(&s.Total.Sessions)
	clamp(&s.Total.CurrentStreak)
	clamp(&s.Total.BestStreak)
	for i := range s.Week {
		clamp(&s.Week[i].Pomodoros)
		clamp(&s.Week[i].FocusMinutes)
	}
}

// Clone returns a deep copy.
func (s Stats) Clone() Stats {
	out := s
	out.Week = make([]WeekBucket, len(s.Week))
	copy(out.Week, s.Week)
	if s.Total.FirstSession != nil {
		first := *s.Total.FirstSession
		out.Total.FirstSession = &first
	}
	return out
}
