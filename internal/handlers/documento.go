// internal/handlers/documento.go
package handlers

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/middleware"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

// UploadField is the multipart field carrying the files of a batch.
const UploadField = "arquivo"

type DocumentoHandler struct {
	documentos *services.DocumentService
}

func NewDocumentoHandler(documentos *services.DocumentService) *DocumentoHandler {
	return &DocumentoHandler{documentos: documentos}
}

func documentoID(c *gin.Context) (int64, bool) {
	id, ok := utils.ParamID(c, "docId")
	if !ok {
		utils.NotFoundResponse(c, "documento")
	}
	return id, ok
}

// GET /averbacoes/:id/documentos
func (h *DocumentoHandler) List(c *gin.Context) {
	id, ok := averbacaoID(c)
	if !ok {
		return
	}

	panel, err := h.documentos.List(c.Request.Context(), middleware.SessionFromContext(c), id)
	if err != nil {
		respondError(c, "averbacao", err)
		return
	}

	utils.SuccessResponse(c, panel)
}

// POST /averbacoes/:id/documentos
func (h *DocumentoHandler) Upload(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := averbacaoID(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyDocumentoNoFiles), err.Error())
		return
	}

	headers := form.File[UploadField]
	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, services.UploadFileFromHeader(fh))
	}

	report, err := h.documentos.UploadBatch(c.Request.Context(), middleware.SessionFromContext(c), id, files, services.NewNotifier(lang))
	if err != nil {
		respondError(c, "averbacao", err)
		return
	}

	status := http.StatusOK
	if len(report.Enviados) > 0 {
		status = http.StatusCreated
	}
	c.JSON(status, utils.APIResponse{
		Success: len(report.Enviados) > 0,
		Data:    report,
	})
}

// DELETE /averbacoes/:id/documentos/:docId
func (h *DocumentoHandler) Delete(c *gin.Context) {
	id, ok := averbacaoID(c)
	if !ok {
		return
	}
	docID, ok := documentoID(c)
	if !ok {
		return
	}

	panel, err := h.documentos.Delete(c.Request.Context(), middleware.SessionFromContext(c), id, docID)
	if err != nil {
		respondError(c, "documento", err)
		return
	}

	utils.SuccessMessageResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyDocumentoDeleted), panel)
}

// GET /averbacoes/:id/documentos/:docId/download
func (h *DocumentoHandler) Download(c *gin.Context) {
	id, ok := averbacaoID(c)
	if !ok {
		return
	}
	docID, ok := documentoID(c)
	if !ok {
		return
	}

	doc, err := h.documentos.Download(c.Request.Context(), middleware.SessionFromContext(c), id, docID)
	if err != nil {
		respondError(c, "documento", err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Data(http.StatusOK, contentType, doc.Content)
}
