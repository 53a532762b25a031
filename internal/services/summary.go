package services

import (
	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// BuildSummary projects a participant's check-in history (newest-first) into
// a ParticipantSummary. Always recomputed from history; the Redis copy is a
// cache, never the source of truth.
func BuildSummary(participantID uuid.UUID, history []models.CheckIn) models.ParticipantSummary {
	summary := models.ParticipantSummary{
		ParticipantID: participantID,
		RiskTier:      models.RiskGreen,
		MoodTrend:     models.TrendStable,
		CheckInCount:  len(history),
	}
	if len(history) == 0 {
		return summary
	}

	latest := history[0]
	summary.RiskTier = latest.RiskTier
	summary.LastCheckInAt = latest.CreatedAt
	summary.MoodTrend = MoodTrend(history)

	// Average PHQ over the same recent window the trend uses.
	window := history
	if len(window) > trendWindow {
		window = window[:trendWindow]
	}
	sum := 0.0
	for _, ci := range window {
		sum += float64(ci.PHQSubscore)
	}
	summary.AvgPHQ = sum / float64(len(window))

	return summary
}
