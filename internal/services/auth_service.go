// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/config"
	"github.com/averbacoes/backoffice/internal/models"
	"github.com/averbacoes/backoffice/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is returned when the session lifetime is over or a
	// refresh failed for any reason other than an inactive user.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserInactive is returned when a refresh shows the user was removed
	// or deactivated.
	ErrUserInactive = errors.New("user not found or inactive")
)

// Reasons reported to the browser when a session is terminated.
const (
	ReasonSessionExpired = "session_expired"
	ReasonUserInactive   = "user_inactive"
)

// refreshSkew refreshes slightly before the upstream token expires.
const refreshSkew = 30 * time.Second

var inactiveUserPattern = regexp.MustCompile(`(?i)(usu[aá]rio|user).*(n[aã]o encontrado|inativo|desativado|not found|inactive|disabled)`)

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

type LoginResponse struct {
	Token      string              `json:"token"`
	TokenType  string              `json:"token_type"`
	ExpiresIn  int                 `json:"expires_in"` // in seconds
	Usuario    SessionUser         `json:"usuario"`
	Permissoes []models.Permission `json:"permissoes"`
}

type SessionUser struct {
	IDUsuario int64  `json:"idUsuario"`
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	PerfilID  *int64 `json:"perfilId,omitempty"`
}

// SessionContext is the read-only view of a session handed to request
// handlers. Its access token is valid for the duration of the request.
type SessionContext struct {
	id          uuid.UUID
	user        SessionUser
	accessToken string
	permissions *PermissionEvaluator
}

func (s *SessionContext) ID() uuid.UUID {
	return s.id
}

func (s *SessionContext) User() SessionUser {
	return s.user
}

func (s *SessionContext) AccessToken() string {
	if s == nil {
		return ""
	}
	return s.accessToken
}

func (s *SessionContext) Permissions() *PermissionEvaluator {
	if s == nil {
		return nil
	}
	return s.permissions
}

// NewSessionContext builds a context outside of a store, for callers that
// already hold a valid upstream token.
func NewSessionContext(id uuid.UUID, user SessionUser, accessToken string, perms []models.Permission) *SessionContext {
	return &SessionContext{
		id:          id,
		user:        user,
		accessToken: accessToken,
		permissions: NewPermissionEvaluator(perms),
	}
}

// SessionManager is the only writer of session state. It signs users in,
// refreshes upstream tokens and terminates sessions.
type SessionManager struct {
	api     *apiclient.Client
	store   SessionStore
	sealer  *utils.Sealer
	cfg     *config.Config
	refresh singleflight.Group
	now     func() time.Time
	log     *logrus.Entry
}

func NewSessionManager(api *apiclient.Client, store SessionStore, sealer *utils.Sealer, cfg *config.Config) *SessionManager {
	return &SessionManager{
		api:    api,
		store:  store,
		sealer: sealer,
		cfg:    cfg,
		now:    time.Now,
		log:    logrus.WithField("component", "session"),
	}
}

func (m *SessionManager) sessionTTL() time.Duration {
	if m.cfg.JWT.SessionTTL <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(m.cfg.JWT.SessionTTL) * time.Hour
}

// accessExpiry uses the exp claim of the upstream token and falls back to
// the configured lifetime when the token is opaque.
func (m *SessionManager) accessExpiry(token string) time.Time {
	if exp, ok := utils.TokenExpiry(token); ok {
		return exp
	}
	ttl := m.cfg.Session.AccessTokenTTL
	if ttl <= 0 {
		ttl = 15
	}
	return m.now().Add(time.Duration(ttl) * time.Minute)
}

func (m *SessionManager) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	result, err := m.api.Login(ctx, req.Email, req.Senha)
	if err != nil {
		if apiclient.IsKind(err, apiclient.KindUnauthorized) || apiclient.IsKind(err, apiclient.KindValidation) ||
			apiclient.IsKind(err, apiclient.KindBusiness) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}

	if result.Usuario.Ativo != nil && !*result.Usuario.Ativo {
		return nil, ErrUserInactive
	}

	sealedAccess, err := m.sealer.Seal(result.Token)
	if err != nil {
		return nil, err
	}
	sealedRefresh, err := m.sealer.Seal(result.RefreshToken)
	if err != nil {
		return nil, err
	}

	perms := FlattenPermissions(result.Usuario)
	user := SessionUser{
		IDUsuario: result.Usuario.IDUsuario,
		Nome:      result.Usuario.Nome,
		Email:     result.Usuario.Email,
	}
	if result.Usuario.Perfil != nil {
		id := result.Usuario.Perfil.IDPerfil
		user.PerfilID = &id
	}

	now := m.now()
	session := &models.Session{
		ID:                   uuid.New(),
		UsuarioID:            user.IDUsuario,
		UsuarioNome:          user.Nome,
		UsuarioEmail:         user.Email,
		PerfilID:             user.PerfilID,
		Permissoes:           models.PermissionKeys(perms),
		SealedAccessToken:    sealedAccess,
		SealedRefreshToken:   sealedRefresh,
		AccessTokenExpiresAt: m.accessExpiry(result.Token),
		ExpiresAt:            now.Add(m.sessionTTL()),
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	token, err := utils.GenerateSessionJWT(session.ID, user.IDUsuario, m.sessionTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	m.log.WithFields(logrus.Fields{
		"session_id":  session.ID,
		"usuario_id":  user.IDUsuario,
		"permissions": len(perms),
	}).Info("Session created")

	return &LoginResponse{
		Token:      token,
		TokenType:  "Bearer",
		ExpiresIn:  int(m.sessionTTL().Seconds()),
		Usuario:    user,
		Permissoes: perms,
	}, nil
}

// Resolve loads a session, refreshing the upstream access token when it is
// about to expire. Concurrent refreshes of the same session share one
// upstream call. ErrSessionExpired and ErrUserInactive mean the session
// has been removed and the user must sign in again.
func (m *SessionManager) Resolve(ctx context.Context, id uuid.UUID) (*SessionContext, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if !now.Before(session.ExpiresAt) {
		m.terminate(ctx, session.ID, ReasonSessionExpired, nil)
		return nil, ErrSessionExpired
	}

	accessToken, err := m.sealer.Open(session.SealedAccessToken)
	if err != nil {
		m.terminate(ctx, session.ID, ReasonSessionExpired, err)
		return nil, ErrSessionExpired
	}

	if !now.Add(refreshSkew).Before(session.AccessTokenExpiresAt) {
		v, err, shared := m.refresh.Do(id.String(), func() (interface{}, error) {
			return m.currentOrRefresh(ctx, id)
		})
		if err != nil {
			return nil, err
		}
		accessToken = v.(string)
		m.log.WithFields(logrus.Fields{"session_id": id, "shared": shared}).Debug("Access token refreshed")
	}

	return &SessionContext{
		id: session.ID,
		user: SessionUser{
			IDUsuario: session.UsuarioID,
			Nome:      session.UsuarioNome,
			Email:     session.UsuarioEmail,
			PerfilID:  session.PerfilID,
		},
		accessToken: accessToken,
		permissions: NewPermissionEvaluator(session.PermissionList()),
	}, nil
}

// currentOrRefresh re-reads the session inside the flight so a caller
// holding a snapshot from before another flight committed reuses the
// rotated token instead of replaying the spent refresh token.
func (m *SessionManager) currentOrRefresh(ctx context.Context, id uuid.UUID) (string, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", ErrSessionExpired
		}
		return "", err
	}

	if m.now().Add(refreshSkew).Before(session.AccessTokenExpiresAt) {
		accessToken, err := m.sealer.Open(session.SealedAccessToken)
		if err != nil {
			m.terminate(ctx, session.ID, ReasonSessionExpired, err)
			return "", ErrSessionExpired
		}
		return accessToken, nil
	}

	return m.refreshTokens(ctx, session)
}

func (m *SessionManager) refreshTokens(ctx context.Context, session *models.Session) (string, error) {
	refreshToken, err := m.sealer.Open(session.SealedRefreshToken)
	if err != nil {
		m.terminate(ctx, session.ID, ReasonSessionExpired, err)
		return "", ErrSessionExpired
	}

	pair, err := m.api.RefreshToken(ctx, refreshToken)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if isInactiveUser(err) {
			m.terminate(ctx, session.ID, ReasonUserInactive, err)
			return "", ErrUserInactive
		}
		m.terminate(ctx, session.ID, ReasonSessionExpired, err)
		return "", ErrSessionExpired
	}

	sealedAccess, err := m.sealer.Seal(pair.Token)
	if err != nil {
		return "", err
	}
	sealedRefresh, err := m.sealer.Seal(pair.RefreshToken)
	if err != nil {
		return "", err
	}

	if err := m.store.UpdateTokens(ctx, session.ID, sealedAccess, sealedRefresh, m.accessExpiry(pair.Token)); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", ErrSessionExpired
		}
		return "", err
	}

	return pair.Token, nil
}

// isInactiveUser tells a removed or deactivated user apart from an
// ordinary refresh failure.
func isInactiveUser(err error) bool {
	apiErr, ok := apiclient.AsError(err)
	if !ok {
		return false
	}
	if apiErr.Kind == apiclient.KindNotFound || apiErr.Kind == apiclient.KindForbidden {
		return true
	}
	if inactiveUserPattern.MatchString(apiErr.Message) {
		return true
	}
	for _, msg := range apiErr.Errors {
		if inactiveUserPattern.MatchString(msg) {
			return true
		}
	}
	return false
}

func (m *SessionManager) terminate(ctx context.Context, id uuid.UUID, reason string, cause error) {
	entry := m.log.WithFields(logrus.Fields{"session_id": id, "reason": reason})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Warn("Session terminated")

	if err := m.store.Delete(context.WithoutCancel(ctx), id); err != nil {
		m.log.WithError(err).WithField("session_id", id).Error("Failed to delete session")
	}
}

// Revoke terminates a session whose upstream access token was rejected
// before its expiry.
func (m *SessionManager) Revoke(ctx context.Context, id uuid.UUID, cause error) {
	m.terminate(ctx, id, ReasonSessionExpired, cause)
}

func (m *SessionManager) Logout(ctx context.Context, id uuid.UUID) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	m.log.WithField("session_id", id).Info("Session closed")
	return nil
}

// StartJanitor removes expired sessions until ctx is cancelled.
func (m *SessionManager) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := m.store.DeleteExpired(ctx, m.now())
				if err != nil {
					m.log.WithError(err).Error("Failed to purge expired sessions")
					continue
				}
				if n > 0 {
					m.log.WithField("count", n).Info("Expired sessions purged")
				}
			}
		}
	}()
}
