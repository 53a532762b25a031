package services

import (
	"github.com/warriorcare/warriorcare-backend/internal/models"
)

// Operation names the action the caller is about to perform. The gate needs
// it to decide which facts (consent, assignment) apply.
type Operation int

const (
	OpSubmitCheckIn Operation = iota
	OpViewOwnHistory
	OpViewParticipant
	OpAcceptConsent
	OpSubscribeDashboard
)

// AccessRequest is the full input snapshot for one authorization decision.
// The consent and assignment facts are looked up by the caller and passed in,
// so the decision itself stays a pure function.
type AccessRequest struct {
	Identity     *models.Identity // nil when unauthenticated
	RequiredRole models.Role      // empty when any role may perform the operation
	Operation    Operation
	HasConsent   bool // effective consent exists for the target participant
	Assigned     bool // active care-team assignment exists (clinician operations)
}

// Decision is the gate's tagged result. Reason is only set on denial.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision            { return Decision{Allowed: true} }
func deny(r DenyReason) Decision { return Decision{Reason: r} }

// Authorize is the access gate: one pure decision function instead of guard
// clauses scattered through the handlers. Checks run in a fixed order, so the
// first failing one names the denial.
//
// A participant session moves Unauthenticated -> Authenticated(no consent) ->
// Authenticated(consented); accepting consent is the only forward transition
// and there is no path back.
func Authorize(req AccessRequest) Decision {
	if req.Identity == nil {
		return deny(DenyUnauthenticated)
	}
	if req.RequiredRole != "" && req.Identity.Role != req.RequiredRole {
		return deny(DenyWrongRole)
	}

	switch req.Operation {
	case OpSubmitCheckIn, OpViewOwnHistory:
		if !req.HasConsent {
			return deny(DenyConsentRequired)
		}
	case OpViewParticipant:
		if !req.Assigned {
			return deny(DenyNotAssigned)
		}
	}

	return allow()
}

// Err converts a denial into the matching AccessError; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return NewAccessError(d.Reason)
}
