package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/warriorcare/warriorcare-backend/internal/models"
	"github.com/warriorcare/warriorcare-backend/internal/services"
	"github.com/warriorcare/warriorcare-backend/pkg/utils"
)

type SignupRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and signin.
type AuthResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *models.Identity `json:"user,omitempty"`
	Token   string           `json:"token,omitempty"`
}

// Signup registers an account. Role is fixed at registration; there is no
// role-change flow.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Role = strings.TrimSpace(req.Role)
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}
	if !models.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "Role must be participant or clinician")
		return
	}

	// Check if account already exists
	existing, _, err := store.IdentityByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "An account with this email already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	ident, err := store.CreateIdentity(r.Context(), req.Email, models.Role(req.Role), hashedPassword)
	if err != nil {
		log.Printf("ERROR: Failed to create account: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	switch ident.Role {
	case models.RoleParticipant:
		if err := store.EnsureParticipantProfile(r.Context(), ident.ID, req.Name); err != nil {
			log.Printf("⚠️  Failed to create participant profile for %s: %v", ident.ID, err)
		}
	case models.RoleClinician:
		if err := store.CreateClinicianProfile(r.Context(), ident.ID, req.Name, req.Organization); err != nil {
			log.Printf("⚠️  Failed to create clinician profile for %s: %v", ident.ID, err)
		}
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User:    ident,
	})
}

// Signin verifies credentials and issues a session token.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ident, hash, err := store.IdentityByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, hash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := services.CreateSession(ident.ID)
	if err != nil {
		log.Printf("ERROR: Failed to create session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signed in successfully",
		User:    ident,
		Token:   token,
	})
}

// Signout invalidates the current session token.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing session token")
		return
	}

	if err := services.InvalidateSession(token); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Signed out successfully"})
}

// Me returns the authenticated identity plus its consent state, so the
// frontend knows whether to show the consent screen.
func Me(w http.ResponseWriter, r *http.Request) {
	ident := currentIdentity(r)
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired session")
		return
	}

	payload := map[string]interface{}{
		"user": ident,
	}
	if ident.Role == models.RoleParticipant {
		hasConsent, err := triage.HasEffectiveConsent(r.Context(), ident.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		payload["has_consent"] = hasConsent
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "OK", Data: payload})
}
