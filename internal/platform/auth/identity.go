package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// WildcardPermission grants full access and bypasses department scoping.
const WildcardPermission = "*"

// seniorRoleMarkers are matched as case-insensitive substrings of role names.
// Roles carrying one of these may verify, reject, and release results.
var seniorRoleMarkers = []string{"admin", "pathologist", "scientist", "hematologist"}

// managerialRoleMarkers extend the senior set for direct status updates to
// Verified or Released through the generic transition path.
var managerialRoleMarkers = []string{"manager", "director"}

// Capabilities is the identity's effective permission set, resolved once at
// authentication rather than re-derived from role strings per call.
type Capabilities struct {
	Elevated    bool
	Department  *uuid.UUID
	SeniorStaff bool
	Managerial  bool
}

// Identity describes the authenticated caller for the duration of a request.
type Identity struct {
	UserID       string
	Name         string
	Roles        []string
	DepartmentID *uuid.UUID
	Caps         Capabilities
}

// ResolveCapabilities maps raw role names, permissions, and department into a
// capability set.
func ResolveCapabilities(roles, permissions []string, departmentID *uuid.UUID) Capabilities {
	caps := Capabilities{Department: departmentID}
	for _, p := range permissions {
		if p == WildcardPermission {
			caps.Elevated = true
			break
		}
	}
	for _, role := range roles {
		lower := strings.ToLower(role)
		for _, marker := range seniorRoleMarkers {
			if strings.Contains(lower, marker) {
				caps.SeniorStaff = true
				caps.Managerial = true
			}
		}
		for _, marker := range managerialRoleMarkers {
			if strings.Contains(lower, marker) {
				caps.Managerial = true
			}
		}
	}
	return caps
}

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated identity, or nil when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
