package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/mediatrack/campaign-api/internal/models"
	appErrors "github.com/mediatrack/campaign-api/pkg/errors"
	"github.com/mediatrack/campaign-api/pkg/response"
)

// SelfScope is the sentinel accepted by RBAC alongside role names. It grants
// access when the authenticated user targets their own :id resource.
const SelfScope = "SELF"

// RBAC restricts a route to the given roles. The allow list is parsed once at
// route registration, not per request.
func RBAC(allowed ...string) gin.HandlerFunc {
	roles := make(map[models.UserRole]struct{}, len(allowed))
	allowSelf := false
	for _, entry := range allowed {
		if entry == SelfScope {
			allowSelf = true
			continue
		}
		roles[models.UserRole(entry)] = struct{}{}
	}

	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := value.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, permitted := roles[claims.Role]; permitted {
			c.Next()
			return
		}
		if allowSelf && claims.UserID != "" && claims.UserID == c.Param("id") {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is the typed variant of RBAC for routes without a self scope.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return RBAC(names...)
}
