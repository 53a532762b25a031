package models

import (
	"time"

	"github.com/google/uuid"
)

// ConsentRecord is append-only: records are never updated or deleted, and a
// new acceptance simply adds another row. The most recent accepted record is
// the effective one.
type ConsentRecord struct {
	ID            uuid.UUID `json:"id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Accepted      bool      `json:"accepted"`
	Version       string    `json:"version"`
	AcceptedAt    time.Time `json:"accepted_at"`
	CreatedAt     time.Time `json:"created_at"`
}
