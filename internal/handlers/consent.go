package handlers

import (
	"encoding/json"
	"net/http"
)

type ConsentRequest struct {
	Accepted bool   `json:"accepted"`
	Version  string `json:"version"`
}

// AcceptConsent records a consent decision for the authenticated participant.
// The record is append-only; re-submitting adds a new record rather than
// rewriting history.
func AcceptConsent(w http.ResponseWriter, r *http.Request) {
	ident := currentIdentity(r)

	var req ConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := consents.Accept(r.Context(), ident, req.Accepted, req.Version)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Consent recorded",
		Data:    rec,
	})
}

// ConsentStatus returns the effective consent record, or has_consent=false
// when the participant has never accepted.
func ConsentStatus(w http.ResponseWriter, r *http.Request) {
	ident := currentIdentity(r)

	rec, err := consents.Status(r.Context(), ident)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	payload := map[string]interface{}{
		"has_consent": rec != nil,
	}
	if rec != nil {
		payload["consent"] = rec
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "OK", Data: payload})
}
