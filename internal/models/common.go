// internal/models/common.go
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Amount is a monetary or rate value computed by the API. Decimal columns
// arrive either as JSON numbers or as numeric strings.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid amount %s: %w", raw, err)
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			return nil
		}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", raw, err)
	}
	*a = Amount(value)
	return nil
}

func (a Amount) Float64() float64 {
	return float64(a)
}

// FlexString accepts a JSON string or number. Some audit fields carry a
// user id in one API version and a user name in another.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// FlexInt64 accepts an integer as a JSON number or a numeric string, as
// submitted by select inputs.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid integer %s: %w", raw, err)
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			return nil
		}
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", raw, err)
	}
	*f = FlexInt64(value)
	return nil
}

// Enums
type AverbacaoStatus string

const (
	AverbacaoStatusPendente  AverbacaoStatus = "pendente"
	AverbacaoStatusAprovada  AverbacaoStatus = "aprovada"
	AverbacaoStatusRejeitada AverbacaoStatus = "rejeitada"
	AverbacaoStatusCancelada AverbacaoStatus = "cancelada"
)

// ParseAverbacaoStatus normalizes case and whitespace. An empty value is
// the creation default.
func ParseAverbacaoStatus(raw string) AverbacaoStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return AverbacaoStatusPendente
	}
	return AverbacaoStatus(s)
}

func (s AverbacaoStatus) Valid() bool {
	switch s {
	case AverbacaoStatusPendente, AverbacaoStatusAprovada, AverbacaoStatusRejeitada, AverbacaoStatusCancelada:
		return true
	}
	return false
}

// IsTerminal reports whether no further lifecycle transition can happen.
func (s AverbacaoStatus) IsTerminal() bool {
	switch ParseAverbacaoStatus(string(s)) {
	case AverbacaoStatusAprovada, AverbacaoStatusRejeitada, AverbacaoStatusCancelada:
		return true
	}
	return false
}

// DocumentsMutable is the one gating rule for document upload and removal.
// Every surface that renders documents must go through it.
func DocumentsMutable(status AverbacaoStatus) bool {
	return !status.IsTerminal()
}
