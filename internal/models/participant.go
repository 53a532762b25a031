package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is the profile attached 1:1 to a participant-role identity.
// Created lazily on first authenticated access.
type Participant struct {
	ID          uuid.UUID `json:"id"` // same as the identity id
	DisplayName string    `json:"display_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Clinician is the profile attached 1:1 to a clinician-role identity.
type Clinician struct {
	ID                  uuid.UUID `json:"id"` // same as the identity id
	Name                string    `json:"name"`
	Organization        string    `json:"organization,omitempty"`
	CredentialImagePath string    `json:"credential_image_path,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// ParticipantOverview is a dashboard row: the participant profile joined with
// the identity email.
type ParticipantOverview struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name,omitempty"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// CareTeamAssignment links one clinician to one participant. Rows are created
// by an administrative process; the pipeline only ever reads them.
type CareTeamAssignment struct {
	ClinicianID   uuid.UUID `json:"clinician_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	CreatedAt     time.Time `json:"created_at"`
}
