package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// ConsentStore appends and reads consent records. Append only: the store has
// no update or delete path, so historical records survive new acceptances.
type ConsentStore interface {
	AppendConsent(ctx context.Context, rec *models.ConsentRecord) (*models.ConsentRecord, error)
	EffectiveConsent(ctx context.Context, participantID uuid.UUID) (*models.ConsentRecord, error)
}

// ConsentService records consent decisions and answers the effective-consent
// question the access gate depends on.
type ConsentService struct {
	store ConsentStore
	now   func() time.Time
}

func NewConsentService(store ConsentStore) *ConsentService {
	return &ConsentService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Accept appends a consent record for the authenticated participant. Only an
// accepted record unlocks check-in submission; declining is still recorded so
// the history is complete. Once accepted there is no transition back.
func (s *ConsentService) Accept(ctx context.Context, identity *models.Identity, accepted bool, version string) (*models.ConsentRecord, error) {
	decision := Authorize(AccessRequest{
		Identity:     identity,
		RequiredRole: models.RoleParticipant,
		Operation:    OpAcceptConsent,
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}
	if version == "" {
		return nil, NewValidationError("version", "is required")
	}

	rec := &models.ConsentRecord{
		ParticipantID: identity.ID,
		Accepted:      accepted,
		Version:       version,
	}
	if accepted {
		rec.AcceptedAt = s.now()
	}

	saved, err := s.store.AppendConsent(ctx, rec)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return saved, nil
}

// Status returns the effective (most recent accepted) consent record, or nil
// when the participant has never accepted.
func (s *ConsentService) Status(ctx context.Context, identity *models.Identity) (*models.ConsentRecord, error) {
	decision := Authorize(AccessRequest{
		Identity:     identity,
		RequiredRole: models.RoleParticipant,
		Operation:    OpAcceptConsent,
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	rec, err := s.store.EffectiveConsent(ctx, identity.ID)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return rec, nil
}
