// internal/handlers/errors_test.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/services"
	"github.com/averbacoes/backoffice/internal/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	if err := i18n.Initialize(i18n.DefaultLang); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		err      error
		status   int
		code     string
		message  string
	}{
		{
			name:   "validation failure",
			err:    &services.ValidationFailure{Errors: []utils.ValidationError{{Field: "periodoFim", Tag: "date_gte", Message: "periodoFim inválido"}}},
			status: http.StatusBadRequest, code: "VALIDATION_ERROR", message: "periodoFim inválido",
		},
		{
			name:   "documents locked",
			err:    fmt.Errorf("upload: %w", services.ErrDocumentsLocked),
			status: http.StatusConflict, code: "DOCUMENTS_LOCKED",
		},
		{
			name:   "documento not found",
			err:    services.ErrDocumentoNotFound,
			status: http.StatusNotFound, code: "NOT_FOUND", message: "Documento não encontrado",
		},
		{
			name:   "invalid credentials",
			err:    fmt.Errorf("%w: upstream", services.ErrInvalidCredentials),
			status: http.StatusUnauthorized, code: "UNAUTHORIZED", message: "E-mail ou senha inválidos",
		},
		{
			name: "upstream not found", resource: "averbacao",
			err:    &apiclient.Error{Kind: apiclient.KindNotFound, Status: 404},
			status: http.StatusNotFound, code: "NOT_FOUND", message: "Averbação não encontrada",
		},
		{
			name:   "upstream business rule",
			err:    &apiclient.Error{Kind: apiclient.KindBusiness, Status: 200, Message: "Cliente inativo"},
			status: http.StatusUnprocessableEntity, code: "BUSINESS_RULE", message: "Cliente inativo",
		},
		{
			name:   "upstream conflict",
			err:    &apiclient.Error{Kind: apiclient.KindConflict, Status: 409, Message: "Número já utilizado"},
			status: http.StatusConflict, code: "CONFLICT", message: "Número já utilizado",
		},
		{
			name:   "upstream forbidden",
			err:    &apiclient.Error{Kind: apiclient.KindForbidden, Status: 403},
			status: http.StatusForbidden, code: "FORBIDDEN",
		},
		{
			name:   "upstream token revoked",
			err:    &apiclient.Error{Kind: apiclient.KindUnauthorized, Status: 401, Message: "Token inválido"},
			status: http.StatusUnauthorized, code: "SESSION_TERMINATED",
		},
		{
			name:   "network",
			err:    &apiclient.Error{Kind: apiclient.KindNetwork, Err: errors.New("dial tcp: refused")},
			status: http.StatusBadGateway, code: "UPSTREAM_ERROR", message: "Falha de comunicação com a API de averbações",
		},
		{
			name:   "server",
			err:    &apiclient.Error{Kind: apiclient.KindServer, Status: 500},
			status: http.StatusBadGateway, code: "UPSTREAM_ERROR",
		},
		{
			name:   "unexpected",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError, code: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest("GET", "/v1/averbacoes/1", nil)

			respondError(c, tt.resource, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp utils.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
		})
	}
}

func TestRespondErrorFlagsRevokedUpstreamToken(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/v1/averbacoes", nil)

	respondError(c, "", &apiclient.Error{Kind: apiclient.KindUnauthorized, Status: 401})
	assert.True(t, c.GetBool(utils.ContextUpstreamRevoked))

	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, services.ReasonSessionExpired, resp.Error.Reason)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest("GET", "/v1/averbacoes", nil)
	respondError(c, "", &apiclient.Error{Kind: apiclient.KindForbidden, Status: 403})
	assert.False(t, c.GetBool(utils.ContextUpstreamRevoked))
}
