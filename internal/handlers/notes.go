package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/models"
	"github.com/warriorcare/warriorcare-backend/internal/services"
)

type CreateNoteRequest struct {
	ParticipantID string `json:"participant_id"`
	Body          string `json:"body"`
}

const maxNoteLength = 4000

// authorizeNoteAccess gates note routes: clinicians only, and only for
// participants on their care team. Returns uuid.Nil after writing the error.
func authorizeNoteAccess(w http.ResponseWriter, r *http.Request, participantID string) uuid.UUID {
	ident := currentIdentity(r)
	if ident == nil {
		writeServiceError(w, services.NewAccessError(services.DenyUnauthenticated))
		return uuid.Nil
	}
	if ident.Role != models.RoleClinician {
		writeServiceError(w, services.NewAccessError(services.DenyWrongRole))
		return uuid.Nil
	}

	pid, err := uuid.Parse(participantID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "participant_id must be a UUID")
		return uuid.Nil
	}

	assigned, err := triage.IsAssigned(r.Context(), ident.ID, pid)
	if err != nil {
		writeServiceError(w, err)
		return uuid.Nil
	}
	if !assigned {
		writeServiceError(w, services.NewAccessError(services.DenyNotAssigned))
		return uuid.Nil
	}
	return ident.ID
}

// CreateNote records a clinician note about an assigned participant.
func CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "Note body is required")
		return
	}
	if len(req.Body) > maxNoteLength {
		writeError(w, http.StatusBadRequest, "Note body must be at most 4000 characters")
		return
	}

	clinicianID := authorizeNoteAccess(w, r, req.ParticipantID)
	if clinicianID == uuid.Nil {
		return
	}

	note := &models.Note{
		ParticipantID: req.ParticipantID,
		ClinicianID:   clinicianID.String(),
		Body:          req.Body,
	}
	if clinician, err := store.ClinicianByID(r.Context(), clinicianID); err == nil && clinician != nil {
		note.ClinicianName = clinician.Name
	}

	saved, err := services.SaveNote(r.Context(), note)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to save note. Please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, Response{Success: true, Message: "Note saved", Data: saved})
}

// GetNotes returns notes for an assigned participant, newest-first.
func GetNotes(w http.ResponseWriter, r *http.Request) {
	participantID := r.URL.Query().Get("participant_id")
	if participantID == "" {
		writeError(w, http.StatusBadRequest, "participant_id is required")
		return
	}

	if authorizeNoteAccess(w, r, participantID) == uuid.Nil {
		return
	}

	var limit int64
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	notes, err := services.ListNotes(r.Context(), participantID, limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "Failed to load notes. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"notes": notes,
			"count": len(notes),
		},
	})
}
