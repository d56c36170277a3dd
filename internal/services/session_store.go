// internal/services/session_store.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/averbacoes/backoffice/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists back-office sessions. Only SessionManager writes to it.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, sealedAccess, sealedRefresh []byte, accessExpiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormSessionStore struct {
	db *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func (s *GormSessionStore) Create(ctx context.Context, session *models.Session) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *GormSessionStore) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &session, nil
}

func (s *GormSessionStore) UpdateTokens(ctx context.Context, id uuid.UUID, sealedAccess, sealedRefresh []byte, accessExpiresAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sealed_access_token":     sealedAccess,
			"sealed_refresh_token":    sealedRefresh,
			"access_token_expires_at": accessExpiresAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update session tokens: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *GormSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *GormSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MemorySessionStore keeps sessions in process. Used in development and tests.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]models.Session)}
}

func (s *MemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	s.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := cloneSession(session)
	return &out, nil
}

func (s *MemorySessionStore) UpdateTokens(_ context.Context, id uuid.UUID, sealedAccess, sealedRefresh []byte, accessExpiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.SealedAccessToken = append([]byte(nil), sealedAccess...)
	session.SealedRefreshToken = append([]byte(nil), sealedRefresh...)
	session.AccessTokenExpiresAt = accessExpiresAt
	session.UpdatedAt = time.Now()
	s.sessions[id] = session
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, session := range s.sessions {
		if session.ExpiresAt.Before(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func cloneSession(s models.Session) models.Session {
	s.Permissoes = append(s.Permissoes[:0:0], s.Permissoes...)
	s.SealedAccessToken = append([]byte(nil), s.SealedAccessToken...)
	s.SealedRefreshToken = append([]byte(nil), s.SealedRefreshToken...)
	if s.PerfilID != nil {
		id := *s.PerfilID
		s.PerfilID = &id
	}
	return s
}
