package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"voicebox/internal/access"     // Per-request session
	"voicebox/internal/domain"     // Error kinds
	"voicebox/internal/repository" // User lookup
	"voicebox/internal/utils"      // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// TokenCookie is the cookie carrying the session token
const TokenCookie = "token"

// SessionKey is the gin context key of the *access.Session
const SessionKey = "session"

// authErrorKey holds the reason OptionalAuth could not build a session from a presented token
const authErrorKey = "auth_error"

const (
	errNoToken     = "Not authorized, no token"
	errTokenFailed = "Not authorized, token failed"
)

// tokenFromRequest returns the token from the cookie, falling back to the Authorization header
func tokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie(TokenCookie); err == nil && tok != "" {
		return tok // Cookie takes precedence
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// resolveSession verifies the token and loads the current user record.
// The role comes from the stored user, not the token, so it is always current.
func resolveSession(c *gin.Context, tok, secret string, users *repository.UserRepository) (*access.Session, error) {
	claims, err := utils.ParseJWT(tok, secret) // Parse the JWT token
	if err != nil {
		return nil, domain.UnauthenticatedError(errTokenFailed)
	}
	user, err := users.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			// Token outlived its account
			return nil, domain.UnauthenticatedError(errTokenFailed)
		}
		return nil, err
	}
	role := user.Role
	if parsed, ok := domain.ParseRole(string(role)); ok {
		role = parsed // Canonical casing regardless of how the row was written
	}
	return &access.Session{UserID: user.ID, Username: user.Username, Role: role}, nil
}

// Protect requires a valid token and stores the session in the context
func Protect(secret string, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := tokenFromRequest(c)
		if tok == "" {
			// If not, abort with unauthorized status
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errNoToken})
			return
		}
		session, err := resolveSession(c, tok, secret, users)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}
		c.Set(SessionKey, session) // Store session in context
		c.Next()                   // Proceed to the next handler
	}
}

// OptionalAuth stores a session when a valid token is present and never rejects the request
func OptionalAuth(secret string, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok := tokenFromRequest(c); tok != "" {
			if session, err := resolveSession(c, tok, secret, users); err == nil {
				c.Set(SessionKey, session)
			} else {
				c.Set(authErrorKey, err)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session of the request, nil when unauthenticated
func CurrentSession(c *gin.Context) *access.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*access.Session); ok {
			return s
		}
	}
	return nil
}

// RequireSession returns the session set by OptionalAuth, or aborts with the same 401 Protect would send
func RequireSession(c *gin.Context) *access.Session {
	if s := CurrentSession(c); s != nil {
		return s
	}
	if v, ok := c.Get(authErrorKey); ok {
		if err, ok := v.(error); ok {
			abortWithAuthError(c, err)
			return nil
		}
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": errNoToken})
	return nil
}

// abortWithAuthError writes the {success, error} shape used by the auth layer
func abortWithAuthError(c *gin.Context, err error) {
	msg := errTokenFailed
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": msg})
	case domain.KindForbidden:
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": msg})
	default:
		logrus.WithFields(logrus.Fields{"path": c.FullPath(), "error": err.Error()}).Error("Session lookup failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
