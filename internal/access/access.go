// Package access decides whether a verified identity may perform an operation.
package access

import (
	"voicebox/internal/domain"
)

// Session is the per-request identity, built when the token is verified and dropped when the request ends
type Session struct {
	UserID   string
	Username string
	Role     domain.Role
}

// Authorize checks the session role against the allowed roles. A nil session is unauthenticated.
func Authorize(s *Session, roles ...domain.Role) error {
	if s == nil || s.UserID == "" {
		return domain.UnauthenticatedError("Not authorized, token failed")
	}
	role := s.Role
	if parsed, ok := domain.ParseRole(string(role)); ok {
		role = parsed // Stored roles may differ in case
	}
	for _, r := range roles {
		if role == r {
			return nil
		}
	}
	return domain.ForbiddenError("Forbidden: " + role.String() + " role not authorized")
}

// AuthorizeOwner allows mutation only by the episode's creator. Callers pass the freshly read episode.
func AuthorizeOwner(userID string, e *domain.Episode) error {
	if userID == "" {
		return domain.UnauthenticatedError("Not authorized, token failed")
	}
	if !e.OwnedBy(userID) {
		return domain.ForbiddenError("Not authorized to modify this episode")
	}
	return nil
}
