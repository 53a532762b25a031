package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/warriorcare/warriorcare-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Get("/api/auth/me", handlers.Me)

	// Consent routes (append-only records)
	r.Post("/api/consent", handlers.AcceptConsent)
	r.Get("/api/consent/status", handlers.ConsentStatus)

	// Check-in routes (participant)
	r.Post("/api/checkins", handlers.SubmitCheckIn)
	r.Get("/api/checkins", handlers.GetCheckIns)

	// Dashboard routes (clinician)
	r.Get("/api/participants", handlers.GetAssignedParticipants)
	r.Get("/api/participants/summary", handlers.GetParticipantSummary)

	// Clinician notes (MongoDB history)
	r.Post("/api/notes", handlers.CreateNote)
	r.Get("/api/notes", handlers.GetNotes)

	// Credential document upload (Cloudinary)
	r.Post("/api/upload", handlers.UploadCredential)

	// WebSocket endpoint for live dashboard summary updates
	r.Get("/ws/dashboard", handlers.DashboardWebSocket)
}
