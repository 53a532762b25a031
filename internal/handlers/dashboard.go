package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/models"
	"github.com/warriorcare/warriorcare-backend/internal/services"
)

// ParticipantRow is one row of the clinician dashboard: profile plus the
// current triage summary.
type ParticipantRow struct {
	Participant models.ParticipantOverview `json:"participant"`
	Summary     *models.ParticipantSummary `json:"summary,omitempty"`
}

// GetAssignedParticipants returns the clinician's dashboard list: every
// assigned participant with their current summary.
func GetAssignedParticipants(w http.ResponseWriter, r *http.Request) {
	ident := currentIdentity(r)
	if ident == nil {
		writeServiceError(w, services.NewAccessError(services.DenyUnauthenticated))
		return
	}
	if ident.Role != models.RoleClinician {
		writeServiceError(w, services.NewAccessError(services.DenyWrongRole))
		return
	}

	participants, err := store.AssignedParticipants(r.Context(), ident.ID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Storage unavailable. Please try again.")
		return
	}

	summaries, err := triage.AssignedSummaries(r.Context(), ident.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rows := make([]ParticipantRow, 0, len(participants))
	for _, p := range participants {
		row := ParticipantRow{Participant: p}
		if s, ok := summaries[p.ID]; ok {
			summary := s
			row.Summary = &summary
		}
		rows = append(rows, row)
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"participants": rows,
			"count":        len(rows),
		},
	})
}

// GetParticipantSummary returns a single participant's summary. Participants
// may read their own; clinicians need an active care-team assignment.
func GetParticipantSummary(w http.ResponseWriter, r *http.Request) {
	ident := currentIdentity(r)

	pidStr := r.URL.Query().Get("participant_id")
	if pidStr == "" {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}
	pid, err := uuid.Parse(pidStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "participant_id must be a UUID")
		return
	}

	summary, err := triage.GetParticipantSummary(r.Context(), ident, pid)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "OK", Data: summary})
}
