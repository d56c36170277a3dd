// internal/models/admin.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Session is a signed-in back-office session. Upstream tokens are stored
// sealed; permissions are stored already flattened as MODULO:ACAO keys.
type Session struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	UsuarioID            int64          `json:"usuario_id" gorm:"not null;index"`
	UsuarioNome          string         `json:"usuario_nome" gorm:"size:255"`
	UsuarioEmail         string         `json:"usuario_email" gorm:"size:255;index"`
	PerfilID             *int64         `json:"perfil_id"`
	Permissoes           pq.StringArray `json:"permissoes" gorm:"type:text[]"`
	SealedAccessToken    []byte         `json:"-" gorm:"type:bytea;not null"`
	SealedRefreshToken   []byte         `json:"-" gorm:"type:bytea;not null"`
	AccessTokenExpiresAt time.Time      `json:"access_token_expires_at"`
	ExpiresAt            time.Time      `json:"expires_at" gorm:"index"`
}

func (s *Session) PermissionList() []Permission {
	out := make([]Permission, 0, len(s.Permissoes))
	for _, key := range s.Permissoes {
		if p, ok := ParsePermissionKey(key); ok {
			out = append(out, p)
		}
	}
	return out
}

func PermissionKeys(perms []Permission) pq.StringArray {
	keys := make(pq.StringArray, 0, len(perms))
	for _, p := range perms {
		keys = append(keys, p.Key())
	}
	return keys
}

type AuditLog struct {
	BaseModel
	SessionID    *uuid.UUID `json:"session_id" gorm:"type:uuid;index"`
	UsuarioID    *int64     `json:"usuario_id" gorm:"index"`
	Action       string     `json:"action" gorm:"size:100;not null;index"`
	ResourceType string     `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   *int64     `json:"resource_id" gorm:"index"`
	NewValues    JSONB      `json:"new_values" gorm:"type:jsonb"`
	StatusCode   int        `json:"status_code"`
	DurationMs   int64      `json:"duration_ms"`
	IPAddress    string     `json:"ip_address" gorm:"size:45"`
	UserAgent    string     `json:"user_agent" gorm:"type:text"`
}
