package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		phq     int
		journal string
		want    models.RiskTier
	}{
		{"zero score empty journal", 0, "", models.RiskGreen},
		{"low score", 3, "slept well, went for a run", models.RiskGreen},
		{"amber at threshold", 4, "", models.RiskAmber},
		{"red at score threshold", 5, "", models.RiskRed},
		{"red at max score", 6, "", models.RiskRed},
		{"keyword escalates low score", 0, "feeling hopeless today", models.RiskRed},
		{"keyword is case-insensitive", 1, "I feel HOPELESS", models.RiskRed},
		{"keyword inside larger text", 2, "talked about suicide prevention at group", models.RiskRed},
		{"hyphenated keyword", 0, "urges toward self-harm", models.RiskRed},
		{"negated keyword still flags", 0, "I am not hopeless anymore", models.RiskRed},
		{"keyword never lowers the tier", 6, "hopeless", models.RiskRed},
		{"similar word without keyword", 3, "I hope things get better", models.RiskGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.phq, tt.journal))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, models.RiskAmber, Classify(4, "same input"))
	}
}
