// internal/handlers/lookup.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/middleware"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

// LookupHandler serves the option lists of the averbação form.
type LookupHandler struct {
	lookups *services.LookupService
}

func NewLookupHandler(lookups *services.LookupService) *LookupHandler {
	return &LookupHandler{lookups: lookups}
}

func lookupFilter(c *gin.Context) apiclient.LookupFilter {
	params := utils.GetPaginationParams(c)
	filter := apiclient.LookupFilter{
		Page:      params.Page,
		Limit:     params.Limit,
		Search:    params.Search,
		ClienteID: utils.QueryInt64(c, "clienteId"),
	}
	if v, err := strconv.ParseBool(c.Query("ativo")); err == nil {
		filter.Ativo = &v
	}
	return filter
}

func respondPage[T any](c *gin.Context, page apiclient.Page[T], err error) {
	if err != nil {
		respondError(c, "recurso", err)
		return
	}

	p := page.Pagination
	utils.SetPaginationHeaders(c, p.Total, p.Page, p.Limit, p.TotalPages)
	utils.SuccessResponseWithMeta(c, page.Items, gin.H{"pagination": p})
}

// GET /lookups/clientes
func (h *LookupHandler) Clientes(c *gin.Context) {
	page, err := h.lookups.Clientes(c.Request.Context(), middleware.SessionFromContext(c), lookupFilter(c))
	respondPage(c, page, err)
}

// GET /lookups/seguradoras
func (h *LookupHandler) Seguradoras(c *gin.Context) {
	page, err := h.lookups.Seguradoras(c.Request.Context(), middleware.SessionFromContext(c), lookupFilter(c))
	respondPage(c, page, err)
}

// GET /lookups/container-tipos
func (h *LookupHandler) ContainerTipos(c *gin.Context) {
	page, err := h.lookups.ContainerTipos(c.Request.Context(), middleware.SessionFromContext(c), lookupFilter(c))
	respondPage(c, page, err)
}

// GET /lookups/containers
func (h *LookupHandler) Containers(c *gin.Context) {
	page, err := h.lookups.Containers(c.Request.Context(), middleware.SessionFromContext(c), lookupFilter(c))
	respondPage(c, page, err)
}

// GET /lookups/container-trips
func (h *LookupHandler) ContainerTrips(c *gin.Context) {
	page, err := h.lookups.ContainerTrips(c.Request.Context(), middleware.SessionFromContext(c), lookupFilter(c))
	respondPage(c, page, err)
}
