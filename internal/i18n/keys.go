// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthSessionExpired     = "auth.session_expired"
	KeyAuthUserInactive       = "auth.user_inactive"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthAccessDenied       = "auth.access_denied"

	// Averbações
	KeyAverbacaoCreated  = "averbacao.created"
	KeyAverbacaoUpdated  = "averbacao.updated"
	KeyAverbacaoDeleted  = "averbacao.deleted"
	KeyAverbacaoNotFound = "averbacao.not_found"
	KeyAverbacaoInvalid  = "averbacao.invalid_id"

	// Documentos
	KeyDocumentoUploadSuccess = "documento.upload_success"
	KeyDocumentoUploadFailed  = "documento.upload_failed"
	KeyDocumentoInvalidType   = "documento.invalid_type"
	KeyDocumentoTooLarge      = "documento.too_large"
	KeyDocumentoNoFiles       = "documento.no_files"
	KeyDocumentoDeleted       = "documento.deleted"
	KeyDocumentoNotFound      = "documento.not_found"
	KeyDocumentoLocked        = "documento.locked"

	// Permissões
	KeyPermissaoSynced = "permissao.synced"
	KeyPerfilNotFound  = "perfil.not_found"
	KeyRecursoNotFound = "recurso.not_found"

	// Request handling
	KeyRequestInFlight   = "request.in_flight"
	KeyRateLimitExceeded = "request.rate_limited"
	KeyUpstreamError     = "upstream.error"
	KeyUpstreamNetwork   = "upstream.network"
	KeyInternalError     = "internal.error"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
