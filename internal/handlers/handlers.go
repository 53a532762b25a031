package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/warriorcare/warriorcare-backend/internal/database"
	"github.com/warriorcare/warriorcare-backend/internal/models"
	"github.com/warriorcare/warriorcare-backend/internal/services"
)

// Package-level collaborators, wired once from main before the server starts.
var (
	store    *database.Store
	triage   *services.TriageService
	consents *services.ConsentService
)

// Init wires the handler package to its collaborators.
func Init(s *database.Store, t *services.TriageService, c *services.ConsentService) {
	store = s
	triage = t
	consents = c
}

// Response is the standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// ErrorResponse carries a machine-readable reason alongside the message so
// frontends can branch on denials without string matching.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// writeServiceError maps service-layer errors onto HTTP statuses:
// unauthenticated 401; other denials 403; validation 400; storage 503.
func writeServiceError(w http.ResponseWriter, err error) {
	if ae, ok := services.AsAccessError(err); ok {
		status := http.StatusForbidden
		if ae.Reason == services.DenyUnauthenticated {
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, ErrorResponse{Success: false, Message: ae.Error(), Reason: string(ae.Reason)})
		return
	}
	if ve, ok := services.AsValidationError(err); ok {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	if _, ok := services.AsStorageError(err); ok {
		writeError(w, http.StatusServiceUnavailable, "Storage unavailable. Please try again.")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// extractBearerToken pulls the token out of an Authorization header.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(header)
}

// currentIdentity authenticates the request from its session token. Returns
// nil when the session is missing or invalid; callers treat nil as
// unauthenticated and let the access gate produce the denial.
func currentIdentity(r *http.Request) *models.Identity {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil
	}

	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return nil
	}

	ident, err := store.IdentityByID(r.Context(), userID)
	if err != nil {
		return nil
	}
	return ident
}
