package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOperator, RoleAdmin:
		return true
	}
	return false
}

// Identity represents the verified principal returned by the identity platform.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UID       string // stable subject identifier from the token
	Email     string
	ExpiresAt time.Time // absolute expiry from the token
}

// OperatorDetails carries the operator-only profile fields. Approved gates
// access to the functional counter pages; an unapproved operator is routed to
// the pending-approval view instead.
type OperatorDetails struct {
	CompanyName   string `json:"company_name"`
	ContactNumber string `json:"contact_number"`
	Approved      bool   `json:"approved"`
}

// Principal is the authenticated identity merged with its profile record.
// Operator is non-nil exactly when Role is RoleOperator, so each role case is
// handled explicitly rather than probed through optional fields.
type Principal struct {
	UID      string           `json:"uid"`
	Email    string           `json:"email"`
	Role     Role             `json:"role"`
	Operator *OperatorDetails `json:"operator,omitempty"`
}

// IsApprovedOperator reports whether p is an operator cleared for the counter.
func (p Principal) IsApprovedOperator() bool {
	return p.Role == RoleOperator && p.Operator != nil && p.Operator.Approved
}

// Profile is the stored profile record keyed by UID. It exists independently
// of any live session: created once at first sign-in (or operator
// registration) and never deleted by this service.
type Profile struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	CompanyName   string    `json:"company_name,omitempty"`
	ContactNumber string    `json:"contact_number,omitempty"`
	Approved      bool      `json:"approved"`
	IsOperator    bool      `json:"is_operator"`
	CreatedAt     time.Time `json:"created_at"`
}

// Principal merges the profile into the shape guards consume.
func (p Profile) Principal() Principal {
	pr := Principal{UID: p.UID, Email: p.Email, Role: p.Role}
	if p.Role == RoleOperator {
		pr.Operator = &OperatorDetails{
			CompanyName:   p.CompanyName,
			ContactNumber: p.ContactNumber,
			Approved:      p.Approved,
		}
	}
	return pr
}

// Snapshot is the resolved auth state consumed by access guards. Loading is
// true only between watcher start and the first stream resolution; a nil
// Principal means unauthenticated. All upstream failure modes collapse into
// {nil, false} so guards never see an error.
type Snapshot struct {
	Loading   bool       `json:"loading"`
	Principal *Principal `json:"principal,omitempty"`
}

// SessionEventKind classifies session-change notifications from the identity
// platform stream.
type SessionEventKind string

const (
	// SessionActive reports a live session for the token's subject.
	SessionActive SessionEventKind = "active"
	// SessionRevoked reports sign-out or expiry of the subject's session.
	SessionRevoked SessionEventKind = "revoked"
)

// SessionEvent is one notification on the session-change stream. Events are
// delivered in the order the platform emits them.
type SessionEvent struct {
	Kind SessionEventKind `json:"kind"`
	UID  string           `json:"uid"`
}
