package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is fixed at registration. There is no role-change flow.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleClinician   Role = "clinician"
)

// ValidRole reports whether s is one of the two supported roles.
func ValidRole(s string) bool {
	return Role(s) == RoleParticipant || Role(s) == RoleClinician
}

// Identity is the authenticated account: opaque id, email and role.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
