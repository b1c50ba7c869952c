package stats

import "github.com/verte-zerg/tomato/internal/model"

// Achievement thresholds.
const (
	StreakTodayPomodoros  = 3
	MasterTodayPomodoros  = 10
	EfficientRatio        = 0.9
	EfficientMinCompleted = 5
)

// Eligible lists the achievements whose thresholds s currently meets,
// whether or not they are already unlocked.
func Eligible(s model.Stats) []model.Achievement {
	var out []model.Achievement
	if s.Total.Pomodoros >= 1 {
		out = append(out, model.AchievementFirst)
	}
	if s.Today.Pomodoros >= StreakTodayPomodoros {
		out = append(out, model.AchievementStreak)
	}
	if s.Today.Pomodoros >= MasterTodayPomodoros {
		out = append(out, model.AchievementMaster)
	}
	if s.Today.Completed >= EfficientMinCompleted && Efficiency(s.Today) >= EfficientRatio {
		out = append(out, model.AchievementEfficient)
	}
	return out
}

// EvaluateAchievements unlocks every eligible achievement not yet unlocked
// and returns the newly unlocked ones.
func EvaluateAchievements(s *model.Stats) []model.Achievement {
	var unlocked []model.Achievement
	for _, a := range Eligible(*s) {
		if s.Achievements.Unlock(a) {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// Efficiency is the share of today's finished work sessions that completed.
func Efficiency(day model.DayStats) float64 {
	total := day.Completed + day.Interrupted
	if total == 0 {
		return 0
	}
	return float64(day.Completed) / float64(total)
}
