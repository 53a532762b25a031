package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// CheckInStore is the durable-storage collaborator for check-ins. Append only;
// the store assigns ids and creation timestamps so per-participant ordering is
// settled at the persistence boundary.
type CheckInStore interface {
	AppendCheckIn(ctx context.Context, ci *models.CheckIn) (*models.CheckIn, error)
	ListCheckIns(ctx context.Context, participantID uuid.UUID, limit int, before *time.Time) ([]models.CheckIn, error)
	CountCheckIns(ctx context.Context, participantID uuid.UUID) (int, error)
}

// ConsentReader supplies the effective-consent fact for the access gate.
type ConsentReader interface {
	EffectiveConsent(ctx context.Context, participantID uuid.UUID) (*models.ConsentRecord, error)
}

// SummaryPublisher pushes a recomputed summary snapshot toward subscribed
// dashboards. Publishing is advisory: a failure is logged, never surfaced to
// the submitter, and never retried, because summaries are always recoverable
// by direct query.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, summary models.ParticipantSummary) error
}

// SummaryCache caches computed summaries. Strictly an optimization; a miss or
// a broken cache must never change results.
type SummaryCache interface {
	Get(ctx context.Context, participantID uuid.UUID) (*models.ParticipantSummary, bool)
	Set(ctx context.Context, summary models.ParticipantSummary)
}

// IdempotencyStore remembers the outcome of a submission under a
// client-supplied key, so a retry after a timeout does not double-count.
type IdempotencyStore interface {
	Lookup(ctx context.Context, participantID uuid.UUID, key string) (models.RiskTier, bool, error)
	Remember(ctx context.Context, participantID uuid.UUID, key string, tier models.RiskTier) error
}

// TriageService runs the submission pipeline: gate, classify, persist,
// recompute, fan out.
type TriageService struct {
	checkIns  CheckInStore
	consents  ConsentReader
	directory Directory
	publisher SummaryPublisher
	cache     SummaryCache     // optional
	idem      IdempotencyStore // optional
}

func NewTriageService(checkIns CheckInStore, consents ConsentReader, directory Directory, publisher SummaryPublisher) *TriageService {
	return &TriageService{
		checkIns:  checkIns,
		consents:  consents,
		directory: directory,
		publisher: publisher,
	}
}

// WithCache attaches a summary cache.
func (s *TriageService) WithCache(cache SummaryCache) *TriageService {
	s.cache = cache
	return s
}

// WithIdempotency attaches an idempotency-key store.
func (s *TriageService) WithIdempotency(idem IdempotencyStore) *TriageService {
	s.idem = idem
	return s
}

type SubmitCheckInRequest struct {
	Mood           int     `json:"mood"`
	SleepHours     float64 `json:"sleep_hours"`
	Pain           int     `json:"pain"`
	PHQAnswer1     int     `json:"phq_answer_1"`
	PHQAnswer2     int     `json:"phq_answer_2"`
	JournalText    string  `json:"journal_text"`
	IdempotencyKey string  `json:"-"`
}

type SubmitCheckInResult struct {
	RiskTier models.RiskTier
	CheckIn  *models.CheckIn // nil when an idempotent retry was short-circuited
}

const maxJournalLength = 1000

// validate rejects out-of-range input before anything is scored or persisted.
func (r SubmitCheckInRequest) validate() error {
	if r.Mood < 1 || r.Mood > 5 {
		return NewValidationError("mood", "must be between 1 and 5")
	}
	if r.SleepHours < 0 || r.SleepHours > 16 {
		return NewValidationError("sleep_hours", "must be between 0 and 16")
	}
	if r.Pain < 0 || r.Pain > 10 {
		return NewValidationError("pain", "must be between 0 and 10")
	}
	if r.PHQAnswer1 < 0 || r.PHQAnswer1 > 3 {
		return NewValidationError("phq_answer_1", "must be between 0 and 3")
	}
	if r.PHQAnswer2 < 0 || r.PHQAnswer2 > 3 {
		return NewValidationError("phq_answer_2", "must be between 0 and 3")
	}
	if len(r.JournalText) > maxJournalLength {
		return NewValidationError("journal_text", "must be at most 1000 characters")
	}
	return nil
}

// SubmitCheckIn is the pipeline entry point. On any error before the append,
// nothing is persisted and no push happens; on append failure the whole
// submission fails atomically.
func (s *TriageService) SubmitCheckIn(ctx context.Context, identity *models.Identity, req SubmitCheckInRequest) (*SubmitCheckInResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	hasConsent, err := s.hasEffectiveConsent(ctx, identity)
	if err != nil {
		return nil, err
	}
	decision := Authorize(AccessRequest{
		Identity:     identity,
		RequiredRole: models.RoleParticipant,
		Operation:    OpSubmitCheckIn,
		HasConsent:   hasConsent,
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	// Opt-in dedup: a retry carrying the same key returns the original
	// outcome instead of appending a second record.
	if s.idem != nil && req.IdempotencyKey != "" {
		if tier, ok, err := s.idem.Lookup(ctx, identity.ID, req.IdempotencyKey); err == nil && ok {
			return &SubmitCheckInResult{RiskTier: tier}, nil
		}
	}

	tier := Classify(req.PHQAnswer1+req.PHQAnswer2, req.JournalText)

	saved, err := s.checkIns.AppendCheckIn(ctx, &models.CheckIn{
		ParticipantID: identity.ID,
		Mood:          req.Mood,
		SleepHours:    req.SleepHours,
		Pain:          req.Pain,
		PHQSubscore:   req.PHQAnswer1 + req.PHQAnswer2,
		JournalText:   req.JournalText,
		RiskTier:      tier,
	})
	if err != nil {
		return nil, NewStorageError(err)
	}

	if s.idem != nil && req.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, identity.ID, req.IdempotencyKey, tier); err != nil {
			log.Printf("triage: failed to remember idempotency key for %s: %v", identity.ID, err)
		}
	}

	// The durable write succeeded, so the submission is committed regardless
	// of what happens below. Recompute and push are best-effort from here.
	summary, err := s.recomputeSummary(ctx, identity.ID)
	if err != nil {
		log.Printf("triage: summary recompute after commit failed for %s: %v", identity.ID, err)
		return &SubmitCheckInResult{RiskTier: tier, CheckIn: saved}, nil
	}

	if err := s.publisher.PublishSummary(ctx, summary); err != nil {
		log.Printf("triage: summary publish failed for %s: %v", identity.ID, err)
	}

	return &SubmitCheckInResult{RiskTier: tier, CheckIn: saved}, nil
}

// GetParticipantSummary returns the current summary for a participant.
// Participants may read their own (consent-gated); clinicians need an active
// care-team assignment.
func (s *TriageService) GetParticipantSummary(ctx context.Context, identity *models.Identity, participantID uuid.UUID) (*models.ParticipantSummary, error) {
	if identity == nil {
		return nil, NewAccessError(DenyUnauthenticated)
	}

	switch identity.Role {
	case models.RoleParticipant:
		if identity.ID != participantID {
			return nil, NewAccessError(DenyNotAssigned)
		}
		hasConsent, err := s.hasEffectiveConsent(ctx, identity)
		if err != nil {
			return nil, err
		}
		decision := Authorize(AccessRequest{
			Identity:     identity,
			RequiredRole: models.RoleParticipant,
			Operation:    OpViewOwnHistory,
			HasConsent:   hasConsent,
		})
		if err := decision.Err(); err != nil {
			return nil, err
		}
	case models.RoleClinician:
		assigned, err := s.isAssigned(ctx, identity.ID, participantID)
		if err != nil {
			return nil, err
		}
		decision := Authorize(AccessRequest{
			Identity:     identity,
			RequiredRole: models.RoleClinician,
			Operation:    OpViewParticipant,
			Assigned:     assigned,
		})
		if err := decision.Err(); err != nil {
			return nil, err
		}
	default:
		return nil, NewAccessError(DenyWrongRole)
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, participantID); ok {
			return cached, nil
		}
	}

	summary, err := s.recomputeSummary(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ListHistory returns the authenticated participant's own check-ins,
// newest-first. Consent-gated like submission.
func (s *TriageService) ListHistory(ctx context.Context, identity *models.Identity, limit int, before *time.Time) ([]models.CheckIn, error) {
	hasConsent, err := s.hasEffectiveConsent(ctx, identity)
	if err != nil {
		return nil, err
	}
	decision := Authorize(AccessRequest{
		Identity:     identity,
		RequiredRole: models.RoleParticipant,
		Operation:    OpViewOwnHistory,
		HasConsent:   hasConsent,
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	history, err := s.checkIns.ListCheckIns(ctx, identity.ID, limit, before)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return history, nil
}

// AssignedSummaries returns the summaries for every participant assigned to a
// clinician, keyed by participant id. Callers must have already authorized the
// clinician (role check at the route boundary); assignment is inherent since
// the ids come from the directory.
func (s *TriageService) AssignedSummaries(ctx context.Context, clinicianID uuid.UUID) (map[uuid.UUID]models.ParticipantSummary, error) {
	participantIDs, err := s.directory.ParticipantsFor(ctx, clinicianID)
	if err != nil {
		return nil, NewStorageError(err)
	}

	out := make(map[uuid.UUID]models.ParticipantSummary, len(participantIDs))
	for _, pid := range participantIDs {
		if s.cache != nil {
			if cached, ok := s.cache.Get(ctx, pid); ok {
				out[pid] = *cached
				continue
			}
		}
		summary, err := s.recomputeSummary(ctx, pid)
		if err != nil {
			return nil, err
		}
		out[pid] = summary
	}
	return out, nil
}

// IsAssigned exposes the assignment fact for callers gating other resources
// (notes, detail views) on the same rule as summaries.
func (s *TriageService) IsAssigned(ctx context.Context, clinicianID, participantID uuid.UUID) (bool, error) {
	return s.isAssigned(ctx, clinicianID, participantID)
}

// HasEffectiveConsent exposes the consent fact for the session state surface.
func (s *TriageService) HasEffectiveConsent(ctx context.Context, participantID uuid.UUID) (bool, error) {
	rec, err := s.consents.EffectiveConsent(ctx, participantID)
	if err != nil {
		return false, NewStorageError(err)
	}
	return rec != nil, nil
}

func (s *TriageService) hasEffectiveConsent(ctx context.Context, identity *models.Identity) (bool, error) {
	if identity == nil || identity.Role != models.RoleParticipant {
		return false, nil
	}
	return s.HasEffectiveConsent(ctx, identity.ID)
}

func (s *TriageService) isAssigned(ctx context.Context, clinicianID, participantID uuid.UUID) (bool, error) {
	clinicians, err := s.directory.CliniciansFor(ctx, participantID)
	if err != nil {
		return false, NewStorageError(err)
	}
	for _, id := range clinicians {
		if id == clinicianID {
			return true, nil
		}
	}
	return false, nil
}

// recomputeSummary rebuilds the projection from durable history and refreshes
// the cache with the result.
func (s *TriageService) recomputeSummary(ctx context.Context, participantID uuid.UUID) (models.ParticipantSummary, error) {
	history, err := s.checkIns.ListCheckIns(ctx, participantID, trendWindow, nil)
	if err != nil {
		return models.ParticipantSummary{}, NewStorageError(err)
	}
	total, err := s.checkIns.CountCheckIns(ctx, participantID)
	if err != nil {
		return models.ParticipantSummary{}, NewStorageError(err)
	}
	summary := BuildSummary(participantID, history)
	summary.CheckInCount = total
	if s.cache != nil {
		s.cache.Set(ctx, summary)
	}
	return summary, nil
}
