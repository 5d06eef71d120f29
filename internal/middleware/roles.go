package middleware

import (
	"voicebox/internal/access" // Role decisions
	"voicebox/internal/domain" // Role enumeration

	"github.com/gin-gonic/gin" // Gin web framework
)

// AuthorizeRoles allows the request through only for the listed roles. Must run after Protect.
func AuthorizeRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Authorize(CurrentSession(c), roles...); err != nil {
			abortWithAuthError(c, err)
			return
		}
		c.Next() // Role allowed, proceed to the next handler
	}
}
