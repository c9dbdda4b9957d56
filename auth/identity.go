package auth

import (
	"slices"
	"time"
)

// Roles understood by the admin routes.
const (
	RoleAdmin  = "admin"  // may clear, invalidate and toggle the cache
	RoleViewer = "viewer" // may read stats and decode identifiers
)

// Identity is the caller behind an admin request.
type Identity struct {
	Principal string
	Roles     []string
	ExpiresAt time.Time
	IssuedAt  time.Time

	// Anonymous marks the identity given to every request when no
	// authenticator is configured.
	Anonymous bool
}

// Anonymous returns the identity used when authentication is off.
func Anonymous() *Identity {
	return &Identity{Principal: "anonymous", Anonymous: true}
}

// HasRole reports whether id holds role. A nil identity holds nothing.
func (id *Identity) HasRole(role string) bool {
	return id != nil && slices.Contains(id.Roles, role)
}

// HasAnyRole reports whether id holds at least one of roles.
func (id *Identity) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, id.HasRole)
}

// Expired reports whether id carried an expiry that has passed at now.
func (id *Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}
