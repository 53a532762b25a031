package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/warriorcare/warriorcare-backend/internal/services"
)

// SubmitCheckIn runs the triage pipeline for the authenticated participant:
// gate, classify, persist, recompute, fan out. An Idempotency-Key header makes
// a timed-out retry safe; without one every submission is a new record.
func SubmitCheckIn(w http.ResponseWriter, r *http.Request) {
	ident := currentIdentity(r)

	var req services.SubmitCheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	result, err := triage.SubmitCheckIn(r.Context(), ident, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	payload := map[string]interface{}{
		"risk_tier": result.RiskTier,
	}
	if result.CheckIn != nil {
		payload["check_in"] = result.CheckIn
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Check-in recorded",
		Data:    payload,
	})
}

// GetCheckIns returns the authenticated participant's own history,
// newest-first. Paging via ?limit= and ?before= (RFC 3339).
func GetCheckIns(w http.ResponseWriter, r *http.Request) {
	ident := currentIdentity(r)

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	var before *time.Time
	if s := r.URL.Query().Get("before"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "before must be an RFC 3339 timestamp")
			return
		}
		before = &t
	}

	history, err := triage.ListHistory(r.Context(), ident, limit, before)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"check_ins": history,
			"count":     len(history),
		},
	})
}
