package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
	"github.com/pimacad/academico-api/pkg/response"
)

// RequireAction gates a route on the authz table. Repositories re-check
// the same action; this middleware only rejects earlier and cheaper.
func RequireAction(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextSessionKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		session := value.(*models.Session)

		if d := authz.Check(session.Role, action); !d.Allowed {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, d.Reason))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles gates a route on an explicit role list.
func RequireRoles(roles ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextSessionKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		session := value.(*models.Session)

		for _, role := range roles {
			if session.Role == role {
				c.Next()
				return
			}
		}
		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
