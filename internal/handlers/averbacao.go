// internal/handlers/averbacao.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/middleware"
	"github.com/averbacoes/backoffice/internal/models"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

type AverbacaoHandler struct {
	averbacoes *services.AverbacaoService
}

func NewAverbacaoHandler(averbacoes *services.AverbacaoService) *AverbacaoHandler {
	return &AverbacaoHandler{averbacoes: averbacoes}
}

// averbacaoID reads the :id path parameter, answering 400 when it is not
// a positive integer.
func averbacaoID(c *gin.Context) (int64, bool) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAverbacaoInvalid), nil)
	}
	return id, ok
}

// GET /averbacoes
func (h *AverbacaoHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := apiclient.AverbacaoFilter{
		Page:         params.Page,
		Limit:        params.Limit,
		Search:       params.Search,
		Numero:       c.Query("numero"),
		Status:       models.AverbacaoStatus(c.Query("status")),
		ClienteID:    utils.QueryInt64(c, "clienteId"),
		SeguradoraID: utils.QueryInt64(c, "seguradoraId"),
		DataInicio:   c.Query("dataInicio"),
		DataFim:      c.Query("dataFim"),
	}

	result, err := h.averbacoes.List(c.Request.Context(), middleware.SessionFromContext(c), filter)
	if err != nil {
		respondError(c, "averbacao", err)
		return
	}

	if !result.Stale {
		p := result.Pagination
		utils.SetPaginationHeaders(c, p.Total, p.Page, p.Limit, p.TotalPages)
	}

	utils.SuccessResponseWithMeta(c, result.Items, gin.H{
		"pagination": result.Pagination,
		"generation": result.Generation,
		"stale":      result.Stale,
	})
}

// GET /averbacoes/:id
func (h *AverbacaoHandler) Get(c *gin.Context) {
	id, ok := averbacaoID(c)
	if !ok {
		return
	}

	view, err := h.averbacoes.Get(c.Request.Context(), middleware.SessionFromContext(c), id)
	if err != nil {
		respondError(c, "averbacao", err)
		return
	}

	utils.SuccessResponse(c, view)
}

// GET /averbacoes/:id/drawer
func (h *AverbacaoHandler) Drawer(c *gin.Context) {
	id, ok := averbacaoID(c)
	if !ok {
		return
	}

	drawer, err := h.averbacoes.Drawer(c.Request.Context(), middleware.SessionFromContext(c), id)
	if err != nil {
		respondError(c, "averbacao", err)
		return
	}

	utils.SuccessResponse(c, drawer)
}

// POST /averbacoes
func (h *AverbacaoHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateAverbacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	view, err := h.averbacoes.Create(c.Request.Context(), middleware.SessionFromContext(c), &req)
	if err != nil {
		respondError(c, "averbacao", err)
		return
	}

	utils.CreatedResponse(c, i18n.T(lang, i18n.KeyAverbacaoCreated), view)
}

// PATCH /averbacoes/:id
func (h *AverbacaoHandler) Update(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := averbacaoID(c)
	if !ok {
		return
	}

	var req services.UpdateAverbacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	view, err := h.averbacoes.Update(c.Request.Context(), middleware.SessionFromContext(c), id, &req)
	if err != nil {
		respondError(c, "averbacao", err)
		return
	}

	utils.SuccessMessageResponse(c, i18n.T(lang, i18n.KeyAverbacaoUpdated), view)
}

// DELETE /averbacoes/:id
func (h *AverbacaoHandler) Delete(c *gin.Context) {
	id, ok := averbacaoID(c)
	if !ok {
		return
	}

	if err := h.averbacoes.Delete(c.Request.Context(), middleware.SessionFromContext(c), id); err != nil {
		respondError(c, "averbacao", err)
		return
	}

	utils.SuccessMessageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAverbacaoDeleted), nil)
}
