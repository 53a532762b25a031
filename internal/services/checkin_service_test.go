package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// --- stubs ---

type stubCheckInStore struct {
	history   []models.CheckIn // newest first
	appended  []models.CheckIn
	appendErr error
	listErr   error
}

func (s *stubCheckInStore) AppendCheckIn(ctx context.Context, ci *models.CheckIn) (*models.CheckIn, error) {
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	saved := *ci
	saved.ID = uuid.New()
	saved.CreatedAt = time.Now().UTC()
	s.appended = append(s.appended, saved)
	s.history = append([]models.CheckIn{saved}, s.history...)
	return &saved, nil
}

func (s *stubCheckInStore) ListCheckIns(ctx context.Context, participantID uuid.UUID, limit int, before *time.Time) ([]models.CheckIn, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := s.history
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubCheckInStore) CountCheckIns(ctx context.Context, participantID uuid.UUID) (int, error) {
	if s.listErr != nil {
		return 0, s.listErr
	}
	return len(s.history), nil
}

type stubConsents struct {
	accepted bool
	err      error
}

func (s *stubConsents) EffectiveConsent(ctx context.Context, participantID uuid.UUID) (*models.ConsentRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.accepted {
		return nil, nil
	}
	return &models.ConsentRecord{ParticipantID: participantID, Accepted: true, Version: "v1"}, nil
}

type stubDirectory struct {
	clinicians map[uuid.UUID][]uuid.UUID // participant -> clinicians
}

func (s *stubDirectory) CliniciansFor(ctx context.Context, participantID uuid.UUID) ([]uuid.UUID, error) {
	return s.clinicians[participantID], nil
}

func (s *stubDirectory) ParticipantsFor(ctx context.Context, clinicianID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for pid, cids := range s.clinicians {
		for _, cid := range cids {
			if cid == clinicianID {
				out = append(out, pid)
			}
		}
	}
	return out, nil
}

type stubPublisher struct {
	published []models.ParticipantSummary
	err       error
}

func (s *stubPublisher) PublishSummary(ctx context.Context, summary models.ParticipantSummary) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, summary)
	return nil
}

type memIdempotencyStore struct {
	seen map[string]models.RiskTier
}

func (s *memIdempotencyStore) Lookup(ctx context.Context, participantID uuid.UUID, key string) (models.RiskTier, bool, error) {
	tier, ok := s.seen[participantID.String()+":"+key]
	return tier, ok, nil
}

func (s *memIdempotencyStore) Remember(ctx context.Context, participantID uuid.UUID, key string, tier models.RiskTier) error {
	if s.seen == nil {
		s.seen = make(map[string]models.RiskTier)
	}
	s.seen[participantID.String()+":"+key] = tier
	return nil
}

type fixture struct {
	checkIns  *stubCheckInStore
	consents  *stubConsents
	directory *stubDirectory
	publisher *stubPublisher
	svc       *TriageService
}

func newFixture() *fixture {
	f := &fixture{
		checkIns:  &stubCheckInStore{},
		consents:  &stubConsents{accepted: true},
		directory: &stubDirectory{clinicians: make(map[uuid.UUID][]uuid.UUID)},
		publisher: &stubPublisher{},
	}
	f.svc = NewTriageService(f.checkIns, f.consents, f.directory, f.publisher)
	return f
}

func validRequest() SubmitCheckInRequest {
	return SubmitCheckInRequest{
		Mood:        3,
		SleepHours:  7.5,
		Pain:        2,
		PHQAnswer1:  1,
		PHQAnswer2:  1,
		JournalText: "slept alright",
	}
}

// --- SubmitCheckIn ---

func TestSubmitCheckInPersistsAndPublishes(t *testing.T) {
	f := newFixture()
	ident := participantIdentity()

	result, err := f.svc.SubmitCheckIn(context.Background(), ident, validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.RiskGreen, result.RiskTier)
	require.NotNil(t, result.CheckIn)
	assert.Equal(t, ident.ID, result.CheckIn.ParticipantID)
	assert.Equal(t, 2, result.CheckIn.PHQSubscore)

	require.Len(t, f.checkIns.appended, 1)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, ident.ID, f.publisher.published[0].ParticipantID)
	assert.Equal(t, 1, f.publisher.published[0].CheckInCount)
}

func TestSubmitCheckInKeywordGoesRed(t *testing.T) {
	f := newFixture()
	ident := participantIdentity()

	req := validRequest()
	req.JournalText = "everything feels hopeless"

	result, err := f.svc.SubmitCheckIn(context.Background(), ident, req)
	require.NoError(t, err)
	assert.Equal(t, models.RiskRed, result.RiskTier)

	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, models.RiskRed, f.publisher.published[0].RiskTier)
}

func TestSubmitCheckInDeniedWithoutConsent(t *testing.T) {
	f := newFixture()
	f.consents.accepted = false
	ident := participantIdentity()

	_, err := f.svc.SubmitCheckIn(context.Background(), ident, validRequest())
	require.Error(t, err)
	ae, ok := AsAccessError(err)
	require.True(t, ok)
	assert.Equal(t, DenyConsentRequired, ae.Reason)

	// Nothing persisted, nothing pushed.
	assert.Empty(t, f.checkIns.appended)
	assert.Empty(t, f.publisher.published)
}

func TestSubmitCheckInDeniedForClinician(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SubmitCheckIn(context.Background(), clinicianIdentity(), validRequest())
	require.Error(t, err)
	ae, ok := AsAccessError(err)
	require.True(t, ok)
	assert.Equal(t, DenyWrongRole, ae.Reason)
	assert.Empty(t, f.checkIns.appended)
}

func TestSubmitCheckInDeniedUnauthenticated(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SubmitCheckIn(context.Background(), nil, validRequest())
	require.Error(t, err)
	ae, ok := AsAccessError(err)
	require.True(t, ok)
	assert.Equal(t, DenyUnauthenticated, ae.Reason)
}

func TestSubmitCheckInValidation(t *testing.T) {
	f := newFixture()
	ident := participantIdentity()

	tests := []struct {
		field  string
		mutate func(*SubmitCheckInRequest)
	}{
		{"mood", func(r *SubmitCheckInRequest) { r.Mood = 0 }},
		{"mood", func(r *SubmitCheckInRequest) { r.Mood = 6 }},
		{"sleep_hours", func(r *SubmitCheckInRequest) { r.SleepHours = -1 }},
		{"sleep_hours", func(r *SubmitCheckInRequest) { r.SleepHours = 17 }},
		{"pain", func(r *SubmitCheckInRequest) { r.Pain = 11 }},
		{"phq_answer_1", func(r *SubmitCheckInRequest) { r.PHQAnswer1 = 4 }},
		{"phq_answer_2", func(r *SubmitCheckInRequest) { r.PHQAnswer2 = -1 }},
	}

	for _, tt := range tests {
		req := validRequest()
		tt.mutate(&req)

		_, err := f.svc.SubmitCheckIn(context.Background(), ident, req)
		require.Error(t, err)
		ve, ok := AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, tt.field, ve.Field)
	}

	assert.Empty(t, f.checkIns.appended)
}

func TestSubmitCheckInStorageFailureIsAtomic(t *testing.T) {
	f := newFixture()
	f.checkIns.appendErr = errors.New("connection refused")
	ident := participantIdentity()

	_, err := f.svc.SubmitCheckIn(context.Background(), ident, validRequest())
	require.Error(t, err)
	_, ok := AsStorageError(err)
	require.True(t, ok)

	assert.Empty(t, f.checkIns.appended)
	assert.Empty(t, f.publisher.published)
}

func TestSubmitCheckInPublishFailureStillSucceeds(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("redis down")
	ident := participantIdentity()

	result, err := f.svc.SubmitCheckIn(context.Background(), ident, validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.RiskGreen, result.RiskTier)
	require.Len(t, f.checkIns.appended, 1)
}

func TestSubmitCheckInIdempotentRetry(t *testing.T) {
	f := newFixture()
	f.svc.WithIdempotency(&memIdempotencyStore{})
	ident := participantIdentity()

	req := validRequest()
	req.IdempotencyKey = "retry-1"

	first, err := f.svc.SubmitCheckIn(context.Background(), ident, req)
	require.NoError(t, err)

	second, err := f.svc.SubmitCheckIn(context.Background(), ident, req)
	require.NoError(t, err)
	assert.Equal(t, first.RiskTier, second.RiskTier)
	assert.Nil(t, second.CheckIn)

	// The retry must not double-count.
	require.Len(t, f.checkIns.appended, 1)
}

func TestSubmitCheckInWithoutKeyAppendsEachTime(t *testing.T) {
	f := newFixture()
	f.svc.WithIdempotency(&memIdempotencyStore{})
	ident := participantIdentity()

	for i := 0; i < 3; i++ {
		_, err := f.svc.SubmitCheckIn(context.Background(), ident, validRequest())
		require.NoError(t, err)
	}
	assert.Len(t, f.checkIns.appended, 3)
}

// --- GetParticipantSummary ---

func TestGetParticipantSummaryClinicianNeedsAssignment(t *testing.T) {
	f := newFixture()
	clin := clinicianIdentity()
	pid := uuid.New()

	_, err := f.svc.GetParticipantSummary(context.Background(), clin, pid)
	require.Error(t, err)
	ae, ok := AsAccessError(err)
	require.True(t, ok)
	assert.Equal(t, DenyNotAssigned, ae.Reason)

	f.directory.clinicians[pid] = []uuid.UUID{clin.ID}
	summary, err := f.svc.GetParticipantSummary(context.Background(), clin, pid)
	require.NoError(t, err)
	assert.Equal(t, pid, summary.ParticipantID)
}

func TestGetParticipantSummaryParticipantSelfOnly(t *testing.T) {
	f := newFixture()
	ident := participantIdentity()

	_, err := f.svc.GetParticipantSummary(context.Background(), ident, uuid.New())
	require.Error(t, err)
	ae, ok := AsAccessError(err)
	require.True(t, ok)
	assert.Equal(t, DenyNotAssigned, ae.Reason)

	summary, err := f.svc.GetParticipantSummary(context.Background(), ident, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, ident.ID, summary.ParticipantID)
}

func TestGetParticipantSummaryReflectsHistory(t *testing.T) {
	f := newFixture()
	ident := participantIdentity()

	req := validRequest()
	req.PHQAnswer1 = 3
	req.PHQAnswer2 = 3
	_, err := f.svc.SubmitCheckIn(context.Background(), ident, req)
	require.NoError(t, err)

	summary, err := f.svc.GetParticipantSummary(context.Background(), ident, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RiskRed, summary.RiskTier)
	assert.Equal(t, 1, summary.CheckInCount)
	assert.InDelta(t, 6.0, summary.AvgPHQ, 1e-9)

	// Without an intervening check-in the recompute is idempotent.
	again, err := f.svc.GetParticipantSummary(context.Background(), ident, ident.ID)
	require.NoError(t, err)
	assert.Equal(t, summary, again)
}

// --- ListHistory ---

func TestListHistoryConsentGated(t *testing.T) {
	f := newFixture()
	ident := participantIdentity()

	_, err := f.svc.SubmitCheckIn(context.Background(), ident, validRequest())
	require.NoError(t, err)

	history, err := f.svc.ListHistory(context.Background(), ident, 0, nil)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	f.consents.accepted = false
	_, err = f.svc.ListHistory(context.Background(), ident, 0, nil)
	require.Error(t, err)
	ae, ok := AsAccessError(err)
	require.True(t, ok)
	assert.Equal(t, DenyConsentRequired, ae.Reason)
}

// --- AssignedSummaries ---

func TestAssignedSummaries(t *testing.T) {
	f := newFixture()
	clin := clinicianIdentity()
	p1, p2 := uuid.New(), uuid.New()
	f.directory.clinicians[p1] = []uuid.UUID{clin.ID}
	f.directory.clinicians[p2] = []uuid.UUID{clin.ID}
	f.directory.clinicians[uuid.New()] = []uuid.UUID{uuid.New()}

	summaries, err := f.svc.AssignedSummaries(context.Background(), clin.ID)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Contains(t, summaries, p1)
	assert.Contains(t, summaries, p2)
}
