package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Role represents the platform role carried in the identity token
type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

// ParseRole maps a role claim to a Role. Matching is case-insensitive and
// the identity provider's "student" is treated as USER. Unknown values fall back to USER.
func ParseRole(claim string) Role {
	switch strings.ToUpper(strings.TrimSpace(claim)) {
	case "ADMIN":
		return RoleAdmin
	case "ORGANIZER":
		return RoleOrganizer
	default:
		return RoleUser
	}
}

// Requester is the authenticated caller of a service operation
type Requester struct {
	UserID uuid.UUID
	Role   Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// CanHost reports whether the requester may create events
func (r Requester) CanHost() bool {
	return r.Role == RoleOrganizer || r.Role == RoleAdmin
}

// CanActFor reports whether the requester may act on userID's own records
func (r Requester) CanActFor(userID uuid.UUID) bool {
	return r.UserID == userID || r.IsAdmin()
}

// IsHostOrAdmin is the single authorization predicate for event management
func IsHostOrAdmin(r Requester, event *Event) bool {
	if r.IsAdmin() {
		return true
	}
	return event != nil && event.HostID == r.UserID
}
