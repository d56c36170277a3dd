// internal/services/auth_service_test.go
package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averbacoes/backoffice/internal/models"
	"github.com/averbacoes/backoffice/internal/utils"
)

type authFixture struct {
	manager  *SessionManager
	store    *MemorySessionStore
	refresh  int32
	clock    time.Time
	clockMu  sync.Mutex
	response http.HandlerFunc
}

func (f *authFixture) advance(d time.Duration) {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	f.clock = f.clock.Add(d)
}

func (f *authFixture) setResponse(h http.HandlerFunc) {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	f.response = h
}

func (f *authFixture) currentResponse() http.HandlerFunc {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	return f.response
}

func (f *authFixture) now() time.Time {
	f.clockMu.Lock()
	defer f.clockMu.Unlock()
	return f.clock
}

func loginUser() map[string]interface{} {
	return map[string]interface{}{
		"idUsuario": 5,
		"nome":      "Ana",
		"email":     "ana@empresa.com",
		"perfil": map[string]interface{}{
			"idPerfil": 2,
			"permissoes": []map[string]interface{}{
				{"permissao": map[string]interface{}{"modulo": "AVERBACOES", "acao": "READ"}},
				{"modulo": "AVERBACOES", "acoes": []string{"CREATE", "UPDATE"}},
			},
		},
	}
}

// newAuthFixture serves login and delegates refresh to f.response.
func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	utils.SetJWTSecret("test-secret")

	f := &authFixture{clock: time.Now()}
	f.response = func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]interface{}{"token": "access-2", "refreshToken": "refresh-2"})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]interface{}{
			"usuario":      loginUser(),
			"token":        "access-1",
			"refreshToken": "refresh-1",
		})
	})
	mux.HandleFunc("POST /api/auth/refresh-token", counted(&f.refresh, func(w http.ResponseWriter, r *http.Request) {
		f.currentResponse()(w, r)
	}))

	sealer, err := utils.NewSealer("")
	require.NoError(t, err)

	f.store = NewMemorySessionStore()
	f.manager = NewSessionManager(newAPI(t, mux), f.store, sealer, testConfig())
	f.manager.now = f.now
	return f
}

func (f *authFixture) login(t *testing.T) *LoginResponse {
	t.Helper()
	res, err := f.manager.Login(context.Background(), &LoginRequest{Email: "ana@empresa.com", Senha: "s3nha"})
	require.NoError(t, err)
	return res
}

func sessionIDFrom(t *testing.T, res *LoginResponse) *utils.SessionClaims {
	t.Helper()
	claims, err := utils.ValidateSessionJWT(res.Token)
	require.NoError(t, err)
	return claims
}

func TestLoginCreatesSealedSession(t *testing.T) {
	f := newAuthFixture(t)
	res := f.login(t)

	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, int64(5), res.Usuario.IDUsuario)
	require.NotNil(t, res.Usuario.PerfilID)
	assert.Equal(t, int64(2), *res.Usuario.PerfilID)
	assert.Len(t, res.Permissoes, 3)

	claims := sessionIDFrom(t, res)
	assert.Equal(t, int64(5), claims.UsuarioID)

	stored, err := f.store.Get(context.Background(), mustUUID(t, claims.SessionID))
	require.NoError(t, err)
	assert.NotContains(t, string(stored.SealedAccessToken), "access-1")
	assert.NotContains(t, string(stored.SealedRefreshToken), "refresh-1")
	assert.ElementsMatch(t, []string{"AVERBACOES:READ", "AVERBACOES:CREATE", "AVERBACOES:UPDATE"}, []string(stored.Permissoes))
}

func TestLoginRejectsInvalidCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusUnauthorized, "Credenciais inválidas")
	})
	sealer, _ := utils.NewSealer("")
	m := NewSessionManager(newAPI(t, mux), NewMemorySessionStore(), sealer, testConfig())

	_, err := m.Login(context.Background(), &LoginRequest{Email: "ana@empresa.com", Senha: "errada"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Login(context.Background(), &LoginRequest{Email: "not-an-email", Senha: "x"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveWithoutRefresh(t *testing.T) {
	f := newAuthFixture(t)
	claims := sessionIDFrom(t, f.login(t))

	sess, err := f.manager.Resolve(context.Background(), mustUUID(t, claims.SessionID))
	require.NoError(t, err)
	assert.Equal(t, "access-1", sess.AccessToken())
	assert.True(t, sess.Permissions().CanCreate(models.ModuloAverbacoes))
	assert.False(t, sess.Permissions().CanDelete(models.ModuloAverbacoes))
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.refresh))
}

func TestResolveRefreshesExpiredAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	id := mustUUID(t, sessionIDFrom(t, f.login(t)).SessionID)

	f.advance(20 * time.Minute)

	sess, err := f.manager.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "access-2", sess.AccessToken())

	sess, err = f.manager.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "access-2", sess.AccessToken())
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.refresh))
}

func TestConcurrentResolveSharesOneRefresh(t *testing.T) {
	f := newAuthFixture(t)
	id := mustUUID(t, sessionIDFrom(t, f.login(t)).SessionID)

	release := make(chan struct{})
	f.setResponse(func(w http.ResponseWriter, r *http.Request) {
		<-release
		writeData(w, http.StatusOK, map[string]interface{}{"token": "access-2", "refreshToken": "refresh-2"})
	})
	f.advance(20 * time.Minute)

	var wg sync.WaitGroup
	tokens := make([]string, 5)
	for i := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := f.manager.Resolve(context.Background(), id)
			if assert.NoError(t, err) {
				tokens[i] = sess.AccessToken()
			}
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, tok := range tokens {
		assert.Equal(t, "access-2", tok)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.refresh))
}

func TestRefreshFailureDistinguishesInactiveUser(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		message string
		want    error
	}{
		{"inactive user message", http.StatusUnauthorized, "Usuário não encontrado ou inativo", ErrUserInactive},
		{"user gone", http.StatusNotFound, "Not found", ErrUserInactive},
		{"user forbidden", http.StatusForbidden, "Acesso negado", ErrUserInactive},
		{"expired refresh token", http.StatusUnauthorized, "Refresh token inválido ou expirado", ErrSessionExpired},
		{"server failure", http.StatusInternalServerError, "Erro interno", ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			id := mustUUID(t, sessionIDFrom(t, f.login(t)).SessionID)

			f.setResponse(func(w http.ResponseWriter, r *http.Request) {
				writeFailure(w, tt.status, tt.message)
			})
			f.advance(20 * time.Minute)

			_, err := f.manager.Resolve(context.Background(), id)
			assert.ErrorIs(t, err, tt.want)
			if errors.Is(tt.want, ErrUserInactive) {
				assert.NotErrorIs(t, err, ErrSessionExpired)
			}

			_, err = f.manager.Resolve(context.Background(), id)
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestSessionLifetimeEnds(t *testing.T) {
	f := newAuthFixture(t)
	id := mustUUID(t, sessionIDFrom(t, f.login(t)).SessionID)

	f.advance(9 * time.Hour)

	_, err := f.manager.Resolve(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.refresh))
}

func TestLogoutRemovesSession(t *testing.T) {
	f := newAuthFixture(t)
	id := mustUUID(t, sessionIDFrom(t, f.login(t)).SessionID)

	require.NoError(t, f.manager.Logout(context.Background(), id))
	_, err := f.manager.Resolve(context.Background(), id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreDeleteExpired(t *testing.T) {
	store := NewMemorySessionStore()
	now := time.Now()
	old := &models.Session{ID: mustUUID(t, "6f1c1c9e-0000-4000-8000-000000000001"), ExpiresAt: now.Add(-time.Minute)}
	live := &models.Session{ID: mustUUID(t, "6f1c1c9e-0000-4000-8000-000000000002"), ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Create(context.Background(), old))
	require.NoError(t, store.Create(context.Background(), live))

	n, err := store.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(context.Background(), old.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(context.Background(), live.ID)
	assert.NoError(t, err)
}

// staleStore hands out a previously captured snapshot on the next Get, as a
// request that read the session just before another request refreshed it.
type staleStore struct {
	SessionStore
	mu    sync.Mutex
	stale *models.Session
}

func (s *staleStore) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	stale := s.stale
	s.stale = nil
	s.mu.Unlock()
	if stale != nil {
		return stale, nil
	}
	return s.SessionStore.Get(ctx, id)
}

func TestResolveWithStaleSnapshotReusesRotatedToken(t *testing.T) {
	f := newAuthFixture(t)
	id := mustUUID(t, sessionIDFrom(t, f.login(t)).SessionID)

	var used int32
	f.setResponse(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&used, 1) > 1 {
			writeFailure(w, http.StatusUnauthorized, "Refresh token inválido")
			return
		}
		writeData(w, http.StatusOK, map[string]interface{}{"token": "access-2", "refreshToken": "refresh-2"})
	})
	store := &staleStore{SessionStore: f.store}
	f.manager.store = store
	f.advance(20 * time.Minute)

	snapshot, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)

	sess, err := f.manager.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "access-2", sess.AccessToken())

	store.mu.Lock()
	store.stale = snapshot
	store.mu.Unlock()

	sess, err = f.manager.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "access-2", sess.AccessToken())
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.refresh))

	_, err = f.store.Get(context.Background(), id)
	assert.NoError(t, err)
}
