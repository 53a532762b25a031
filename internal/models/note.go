package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a free-text clinician observation about a participant. Stored in
// MongoDB; participant and clinician ids reference Postgres rows.
type Note struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	ParticipantID string             `bson:"participant_id" json:"participant_id"`
	ClinicianID   string             `bson:"clinician_id" json:"clinician_id"`
	ClinicianName string             `bson:"clinician_name,omitempty" json:"clinician_name,omitempty"`
	Body          string             `bson:"body" json:"body"`
}
