package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

func TestBuildSummaryEmptyHistory(t *testing.T) {
	pid := uuid.New()
	summary := BuildSummary(pid, nil)

	assert.Equal(t, pid, summary.ParticipantID)
	assert.Equal(t, models.RiskGreen, summary.RiskTier)
	assert.Equal(t, models.TrendStable, summary.MoodTrend)
	assert.Zero(t, summary.CheckInCount)
	assert.Zero(t, summary.AvgPHQ)
	assert.True(t, summary.LastCheckInAt.IsZero())
}

func TestBuildSummaryUsesLatestTier(t *testing.T) {
	pid := uuid.New()
	latest := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	history := []models.CheckIn{
		{Mood: 2, PHQSubscore: 5, RiskTier: models.RiskRed, CreatedAt: latest},
		{Mood: 4, PHQSubscore: 1, RiskTier: models.RiskGreen, CreatedAt: latest.Add(-24 * time.Hour)},
	}

	summary := BuildSummary(pid, history)

	assert.Equal(t, models.RiskRed, summary.RiskTier)
	assert.Equal(t, latest, summary.LastCheckInAt)
	assert.Equal(t, 2, summary.CheckInCount)
	assert.InDelta(t, 3.0, summary.AvgPHQ, 1e-9)
}

func TestBuildSummaryAveragesOverWindow(t *testing.T) {
	// Seven entries; only the newest five count toward the average.
	history := make([]models.CheckIn, 7)
	for i := range history {
		history[i] = models.CheckIn{Mood: 3, PHQSubscore: 2, RiskTier: models.RiskGreen}
	}
	history[5].PHQSubscore = 6
	history[6].PHQSubscore = 6

	summary := BuildSummary(uuid.New(), history)

	assert.InDelta(t, 2.0, summary.AvgPHQ, 1e-9)
	assert.Equal(t, 7, summary.CheckInCount)
}
