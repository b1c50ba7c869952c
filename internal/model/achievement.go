package model

// Achievement identifies a one-way unlock.
type Achievement string

const (
	AchievementFirst     Achievement = "first"
	AchievementStreak    Achievement = "streak"
	AchievementMaster    Achievement = "master"
	AchievementEfficient Achievement = "efficient"
)

// AllAchievements lists achievements in display order.
var AllAchievements = []Achievement{
	AchievementFirst,
	AchievementStreak,
	AchievementMaster,
	AchievementEfficient,
}

// Title returns the display name shown on unlock.
func (a Achievement) Title() string {
	switch a {
	case AchievementFirst:
		return "First pomodoro"
	case AchievementStreak:
		return "On a roll"
	case AchievementMaster:
		return "Focus master"
	case AchievementEfficient:
		return "Efficiency"
	default:
		return string(a)
	}
}

// Achievements is the persisted unlock set.
type Achievements struct {
	First     bool `json:"first"`
	Streak    bool `json:"streak"`
	Master    bool `json:"master"`
	Efficient bool `json:"efficient"`
}

// Has reports whether a is unlocked.
func (u Achievements) Has(a Achievement) bool {
	switch a {
	case AchievementFirst:
		return u.First
	case AchievementStreak:
		return u.Streak
	case AchievementMaster:
		return u.Master
	case AchievementEfficient:
		return u.Efficient
	}
	return false
}

// Unlock sets a and reports whether it was newly unlocked.
func (u *Achievements) Unlock(a Achievement) bool {
	if u.Has(a) {
		return false
	}
	switch a {
	case AchievementFirst:
		u.First = true
	case AchievementStreak:
		u.Streak = true
	case AchievementMaster:
		u.Master = true
	case AchievementEfficient:
		u.Efficient = true
	default:
		return false
	}
	return true
}

// Count returns the number of unlocked achievements.
func (u Achievements) Count() int {
	n := 0
	for _, a := range AllAchievements {
		if u.Has(a) {
			n++
		}
	}
	return n
}
