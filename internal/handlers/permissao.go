// internal/handlers/permissao.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/middleware"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

type PermissaoHandler struct {
	admin *services.PermissionAdminService
}

func NewPermissaoHandler(admin *services.PermissionAdminService) *PermissaoHandler {
	return &PermissaoHandler{admin: admin}
}

func perfilID(c *gin.Context) (int64, bool) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		utils.NotFoundResponse(c, "perfil")
	}
	return id, ok
}

// GET /permissoes
func (h *PermissaoHandler) Catalog(c *gin.Context) {
	modules, err := h.admin.Catalog(c.Request.Context(), middleware.SessionFromContext(c))
	if err != nil {
		respondError(c, "recurso", err)
		return
	}

	utils.SuccessResponse(c, modules)
}

// GET /perfis/:id/permissoes
func (h *PermissaoHandler) ForPerfil(c *gin.Context) {
	id, ok := perfilID(c)
	if !ok {
		return
	}

	perms, err := h.admin.ForPerfil(c.Request.Context(), middleware.SessionFromContext(c), id)
	if err != nil {
		respondError(c, "perfil", err)
		return
	}

	utils.SuccessResponse(c, perms)
}

// PUT /perfis/:id/permissoes/sync
func (h *PermissaoHandler) Sync(c *gin.Context) {
	id, ok := perfilID(c)
	if !ok {
		return
	}

	var req services.SyncPermissoesRequest
	if !bindAndValidate(c, &req) {
		return
	}

	perms, err := h.admin.Sync(c.Request.Context(), middleware.SessionFromContext(c), id, &req)
	if err != nil {
		respondError(c, "perfil", err)
		return
	}

	utils.SuccessMessageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyPermissaoSynced), perms)
}
