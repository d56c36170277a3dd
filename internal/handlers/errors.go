// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

// respondError maps service and upstream failures onto the response
// envelope. resource names the i18n prefix used for 404 messages.
func respondError(c *gin.Context, resource string, err error) {
	lang := utils.GetLangFromContext(c)

	if vf, ok := services.IsValidationFailure(err); ok {
		utils.ValidationErrorResponse(c, vf.Errors)
		return
	}

	switch {
	case errors.Is(err, services.ErrDocumentsLocked):
		utils.ErrorResponse(c, http.StatusConflict, "DOCUMENTS_LOCKED", i18n.T(lang, i18n.KeyDocumentoLocked), nil)
		return
	case errors.Is(err, services.ErrDocumentoNotFound):
		utils.NotFoundResponse(c, "documento")
		return
	case errors.Is(err, services.ErrNoFiles):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyDocumentoNoFiles), nil)
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
		return
	case errors.Is(err, services.ErrUserInactive):
		utils.SessionTerminatedResponse(c, services.ReasonUserInactive, i18n.T(lang, i18n.KeyAuthUserInactive))
		return
	}

	apiErr, ok := apiclient.AsError(err)
	if !ok {
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		utils.InternalErrorResponse(c, "")
		return
	}

	var details interface{}
	if len(apiErr.Errors) > 0 {
		details = apiErr.Errors
	}

	switch apiErr.Kind {
	case apiclient.KindNotFound:
		if resource == "" {
			resource = "recurso"
		}
		utils.NotFoundResponse(c, resource)
	case apiclient.KindValidation:
		utils.BadRequestResponse(c, upstreamMessage(apiErr, lang), details)
	case apiclient.KindBusiness:
		utils.UnprocessableResponse(c, upstreamMessage(apiErr, lang), details)
	case apiclient.KindConflict:
		utils.ConflictResponse(c, upstreamMessage(apiErr, lang))
	case apiclient.KindForbidden:
		utils.ForbiddenResponse(c, "")
	case apiclient.KindUnauthorized:
		c.Set(utils.ContextUpstreamRevoked, true)
		utils.SessionTerminatedResponse(c, services.ReasonSessionExpired, i18n.T(lang, i18n.KeyAuthSessionExpired))
	case apiclient.KindNetwork:
		logrus.WithError(err).WithField("path", c.Request.URL.Path).Warn("Upstream unreachable")
		utils.UpstreamErrorResponse(c, i18n.T(lang, i18n.KeyUpstreamNetwork), nil)
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"status": apiErr.Status,
		}).Error("Upstream request failed")
		utils.UpstreamErrorResponse(c, "", nil)
	}
}

func upstreamMessage(err *apiclient.Error, lang string) string {
	if msg := strings.TrimSpace(err.Message); msg != "" {
		return msg
	}
	return i18n.T(lang, i18n.KeyUpstreamError)
}

// bindAndValidate decodes the JSON body into req and runs its validation
// tags. It writes the error response itself and reports whether to go on.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
