package services

import (
	"github.com/warriorcare/warriorcare-backend/internal/models"
)

const (
	// trendWindow is how many recent check-ins the trend looks at.
	trendWindow = 5
	// trendRecentSize is how many of those count as "recent".
	trendRecentSize = 2
	// trendThreshold is the hysteresis band around the older average. A mood
	// shift has to clear it before the trend moves off stable, which keeps
	// small day-to-day fluctuations from flapping the classification.
	trendThreshold = 0.5
)

// MoodTrend classifies the direction of a participant's mood from their
// check-in history, which must be ordered newest-first. With fewer than two
// entries there is nothing to compare and the trend is stable; insufficient
// data is not an error.
func MoodTrend(history []models.CheckIn) models.MoodTrend {
	if len(history) < 2 {
		return models.TrendStable
	}

	window := history
	if len(window) > trendWindow {
		window = window[:trendWindow]
	}

	recent := window[:trendRecentSize]
	older := window[trendRecentSize:]
	if len(older) == 0 {
		return models.TrendStable
	}

	recentAvg := meanMood(recent)
	olderAvg := meanMood(older)

	switch {
	case recentAvg > olderAvg+trendThreshold:
		return models.TrendImproving
	case recentAvg < olderAvg-trendThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

func meanMood(checkIns []models.CheckIn) float64 {
	sum := 0.0
	for _, ci := range checkIns {
		sum += float64(ci.Mood)
	}
	return sum / float64(len(checkIns))
}
