package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warriorcare/warriorcare-backend/internal/models"
)

func participantIdentity() *models.Identity {
	return &models.Identity{ID: uuid.New(), Email: "p@example.com", Role: models.RoleParticipant}
}

func clinicianIdentity() *models.Identity {
	return &models.Identity{ID: uuid.New(), Email: "c@example.com", Role: models.RoleClinician}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		req        AccessRequest
		allowed    bool
		wantReason DenyReason
	}{
		{
			name:       "unauthenticated",
			req:        AccessRequest{Identity: nil, RequiredRole: models.RoleParticipant, Operation: OpSubmitCheckIn},
			wantReason: DenyUnauthenticated,
		},
		{
			name:       "clinician cannot submit",
			req:        AccessRequest{Identity: clinicianIdentity(), RequiredRole: models.RoleParticipant, Operation: OpSubmitCheckIn, HasConsent: true},
			wantReason: DenyWrongRole,
		},
		{
			name:       "participant cannot subscribe dashboard",
			req:        AccessRequest{Identity: participantIdentity(), RequiredRole: models.RoleClinician, Operation: OpSubscribeDashboard},
			wantReason: DenyWrongRole,
		},
		{
			name:       "submit without consent",
			req:        AccessRequest{Identity: participantIdentity(), RequiredRole: models.RoleParticipant, Operation: OpSubmitCheckIn},
			wantReason: DenyConsentRequired,
		},
		{
			name:    "submit with consent",
			req:     AccessRequest{Identity: participantIdentity(), RequiredRole: models.RoleParticipant, Operation: OpSubmitCheckIn, HasConsent: true},
			allowed: true,
		},
		{
			name:       "view own history without consent",
			req:        AccessRequest{Identity: participantIdentity(), RequiredRole: models.RoleParticipant, Operation: OpViewOwnHistory},
			wantReason: DenyConsentRequired,
		},
		{
			name:       "clinician view without assignment",
			req:        AccessRequest{Identity: clinicianIdentity(), RequiredRole: models.RoleClinician, Operation: OpViewParticipant},
			wantReason: DenyNotAssigned,
		},
		{
			name:    "clinician view with assignment",
			req:     AccessRequest{Identity: clinicianIdentity(), RequiredRole: models.RoleClinician, Operation: OpViewParticipant, Assigned: true},
			allowed: true,
		},
		{
			name:    "consent acceptance needs no prior consent",
			req:     AccessRequest{Identity: participantIdentity(), RequiredRole: models.RoleParticipant, Operation: OpAcceptConsent},
			allowed: true,
		},
		{
			name:       "role check runs before consent check",
			req:        AccessRequest{Identity: clinicianIdentity(), RequiredRole: models.RoleParticipant, Operation: OpSubmitCheckIn},
			wantReason: DenyWrongRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.req)
			assert.Equal(t, tt.allowed, got.Allowed)
			if tt.allowed {
				assert.NoError(t, got.Err())
				return
			}
			assert.Equal(t, tt.wantReason, got.Reason)
			err := got.Err()
			require.Error(t, err)
			ae, ok := AsAccessError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantReason, ae.Reason)
		})
	}
}
