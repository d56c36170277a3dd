// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/middleware"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

type AuthHandler struct {
	sessions   *services.SessionManager
	averbacoes *services.AverbacaoService
}

func NewAuthHandler(sessions *services.SessionManager, averbacoes *services.AverbacaoService) *AuthHandler {
	return &AuthHandler{
		sessions:   sessions,
		averbacoes: averbacoes,
	}
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	res, err := h.sessions.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "", err)
		return
	}

	utils.SuccessMessageResponse(c, i18n.T(lang, i18n.KeyAuthLoginSuccess), res)
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	sess := middleware.SessionFromContext(c)

	if err := h.sessions.Logout(c.Request.Context(), sess.ID()); err != nil {
		respondError(c, "", err)
		return
	}
	h.averbacoes.ForgetSession(sess)

	utils.SuccessMessageResponse(c, i18n.T(lang, i18n.KeyAuthLogoutSuccess), nil)
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess := middleware.SessionFromContext(c)

	utils.SuccessResponse(c, gin.H{
		"usuario":    sess.User(),
		"permissoes": sess.Permissions().All(),
	})
}
