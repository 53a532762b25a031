package services

import (
	"context"

	"github.com/google/uuid"
)

// Directory answers the two care-team questions: which clinicians may see a
// participant, and which participants a clinician may see. Assignments are
// created and removed by an administrative process outside this pipeline;
// everything here only reads them. The reverse lookup (clinician ->
// participants) is the hot path for dashboard population, which is why the
// Postgres implementation indexes care_team on both columns.
type Directory interface {
	CliniciansFor(ctx context.Context, participantID uuid.UUID) ([]uuid.UUID, error)
	ParticipantsFor(ctx context.Context, clinicianID uuid.UUID) ([]uuid.UUID, error)
}
