package models

import (
	"time"

	"github.com/google/uuid"
)

// RiskTier is the classifier's output severity.
type RiskTier string

const (
	RiskGreen RiskTier = "green"
	RiskAmber RiskTier = "amber"
	RiskRed   RiskTier = "red"
)

// MoodTrend is the short-window direction of a participant's mood.
type MoodTrend string

const (
	TrendImproving MoodTrend = "improving"
	TrendDeclining MoodTrend = "declining"
	TrendStable    MoodTrend = "stable"
)

// CheckIn is one submitted wellness record. Immutable once created; history
// ordering by CreatedAt is what the trend computation relies on.
type CheckIn struct {
	ID            uuid.UUID `json:"id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Mood          int       `json:"mood"`         // 1..5
	SleepHours    float64   `json:"sleep_hours"`  // 0..16
	Pain          int       `json:"pain"`         // 0..10
	PHQSubscore   int       `json:"phq_subscore"` // 0..6, sum of two 0..3 answers
	JournalText   string    `json:"journal_text,omitempty"`
	RiskTier      RiskTier  `json:"risk_tier"`
	CreatedAt     time.Time `json:"created_at"`
}

// ParticipantSummary is a projection over check-in history. It has no
// lifecycle of its own and is recomputed on every read and on every commit.
type ParticipantSummary struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	RiskTier      RiskTier  `json:"risk_tier"`
	MoodTrend     MoodTrend `json:"mood_trend"`
	AvgPHQ        float64   `json:"avg_phq"`
	CheckInCount  int       `json:"checkin_count"`
	LastCheckInAt time.Time `json:"last_checkin_at"`
}
