// internal/middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionRequired resolves the session named by the bearer token and
// exposes it to handlers. A terminated session answers 401 with
// SESSION_TERMINATED so the browser returns to the login screen.
func SessionRequired(sessions *services.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := utils.ValidateSessionJWT(parts[1])
		if err != nil {
			utils.SessionTerminatedResponse(c, services.ReasonSessionExpired, i18n.T(lang, i18n.KeyAuthSessionExpired))
			c.Abort()
			return
		}

		sessionID, err := uuid.Parse(claims.SessionID)
		if err != nil {
			utils.SessionTerminatedResponse(c, services.ReasonSessionExpired, i18n.T(lang, i18n.KeyAuthSessionExpired))
			c.Abort()
			return
		}

		sess, err := sessions.Resolve(c.Request.Context(), sessionID)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrUserInactive):
			utils.SessionTerminatedResponse(c, services.ReasonUserInactive, i18n.T(lang, i18n.KeyAuthUserInactive))
			c.Abort()
			return
		case errors.Is(err, services.ErrSessionExpired), errors.Is(err, services.ErrSessionNotFound):
			utils.SessionTerminatedResponse(c, services.ReasonSessionExpired, i18n.T(lang, i18n.KeyAuthSessionExpired))
			c.Abort()
			return
		default:
			logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to resolve session")
			utils.InternalErrorResponse(c, "")
			c.Abort()
			return
		}

		c.Set(utils.ContextSession, sess)
		c.Next()

		if c.GetBool(utils.ContextUpstreamRevoked) {
			sessions.Revoke(c.Request.Context(), sessionID, nil)
		}
	}
}

// RequirePermission rejects requests whose session lacks modulo:acao.
func RequirePermission(modulo, acao string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFromContext(c)
		if !sess.Permissions().HasPermission(modulo, acao) {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the resolved session or nil.
func SessionFromContext(c *gin.Context) *services.SessionContext {
	if v, exists := c.Get(utils.ContextSession); exists {
		if sess, ok := v.(*services.SessionContext); ok {
			return sess
		}
	}
	return nil
}
