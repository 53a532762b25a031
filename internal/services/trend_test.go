package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// historyWithMoods builds a newest-first history from mood values.
func historyWithMoods(moods ...int) []models.CheckIn {
	out := make([]models.CheckIn, len(moods))
	for i, m := range moods {
		out[i] = models.CheckIn{Mood: m}
	}
	return out
}

func TestMoodTrend(t *testing.T) {
	tests := []struct {
		name  string
		moods []int // newest first
		want  models.MoodTrend
	}{
		{"empty history", nil, models.TrendStable},
		{"single entry", []int{3}, models.TrendStable},
		{"two entries lack an older slice", []int{5, 1}, models.TrendStable},
		{"improving", []int{5, 5, 2, 2, 2}, models.TrendImproving},
		{"declining", []int{1, 1, 4, 4, 4}, models.TrendDeclining},
		{"flat", []int{3, 3, 3, 3, 3}, models.TrendStable},
		{"shift inside threshold stays stable", []int{3, 4, 3, 3, 3}, models.TrendStable},
		{"exactly threshold is stable", []int{4, 3, 3, 3, 3}, models.TrendStable},
		{"just past threshold improves", []int{4, 4, 3, 3, 3}, models.TrendImproving},
		{"three entries", []int{5, 5, 2}, models.TrendImproving},
		{"older entries beyond window are ignored", []int{3, 3, 3, 3, 3, 1, 1, 1}, models.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MoodTrend(historyWithMoods(tt.moods...)))
		})
	}
}
