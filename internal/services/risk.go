package services

import (
	"strings"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// riskKeywords escalate a check-in to red regardless of the PHQ subscore.
// Matching is a literal substring check, not tokenized, so "not hopeless"
// still flags. That is the documented triage behavior, not an oversight:
// over-flagging is preferred to missing a disclosure.
var riskKeywords = []string{"hopeless", "suicide", "self-harm"}

// Classify maps one check-in's PHQ subscore and journal text to a risk tier.
// Pure and total: no I/O, no side effects, an answer for every input. The
// keyword flag dominates the numeric score for escalation and never lowers
// the tier.
func Classify(phqSubscore int, journalText string) models.RiskTier {
	text := strings.ToLower(journalText)

	flagged := false
	for _, kw := range riskKeywords {
		if strings.Contains(text, kw) {
			flagged = true
			break
		}
	}

	switch {
	case flagged || phqSubscore >= 5:
		return models.RiskRed
	case phqSubscore >= 4:
		return models.RiskAmber
	default:
		return models.RiskGreen
	}
}
