package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authz "github.com/orris-inc/poolkeeper/internal/infrastructure/authorization"
	"github.com/orris-inc/poolkeeper/internal/shared/authorization"
	"github.com/orris-inc/poolkeeper/internal/shared/constants"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
	"github.com/orris-inc/poolkeeper/internal/shared/utils"
)

// Principal copies the caller identity asserted by the gateway into the
// request context.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := c.GetHeader(constants.HeaderPrincipal)
		if principal == "" {
			principal = constants.DefaultPrincipal
		}
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Set(constants.ContextKeyPrincipalRole, authorization.ParseRole(c.GetHeader(constants.HeaderPrincipalRole)).String())
		c.Next()
	}
}

type AuthorizationMiddleware struct {
	gate   authz.Gate
	logger logger.Interface
}

func NewAuthorizationMiddleware(gate authz.Gate, logger logger.Interface) *AuthorizationMiddleware {
	return &AuthorizationMiddleware{
		gate:   gate,
		logger: logger,
	}
}

// Authorize checks the route pattern and method against the gate.
func (m *AuthorizationMiddleware) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := c.GetString(constants.ContextKeyPrincipal)
		role := c.GetString(constants.ContextKeyPrincipalRole)
		object := c.FullPath()
		action := c.Request.Method

		allowed, err := m.gate.Allow(principal, role, object, action)
		if err != nil {
			m.logger.Errorw("permission check failed", "error", err, "principal", principal, "object", object, "action", action)
			utils.ErrorResponse(c, http.StatusInternalServerError, "permission check failed")
			c.Abort()
			return
		}

		if !allowed {
			m.logger.Warnw("permission denied", "principal", principal, "role", role, "object", object, "action", action)
			utils.ErrorResponse(c, http.StatusForbidden, constants.ErrMsgForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
