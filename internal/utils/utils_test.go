// internal/utils/utils_test.go
package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type periodo struct {
	Inicio string `json:"periodoInicio" validate:"required,datetime=2006-01-02"`
	Fim    string `json:"periodoFim" validate:"required,datetime=2006-01-02,date_gte=Inicio"`
}

func TestDateGTE(t *testing.T) {
	assert.NoError(t, ValidateStruct(periodo{Inicio: "2025-01-01", Fim: "2025-01-01"}))
	assert.NoError(t, ValidateStruct(periodo{Inicio: "2025-01-01", Fim: "2025-02-01"}))

	err := ValidateStruct(periodo{Inicio: "2025-02-01", Fim: "2025-01-31"})
	require.Error(t, err)
	errs := GetValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "periodoFim", errs[0].Field)
	assert.Equal(t, "date_gte", errs[0].Tag)
}

func TestMalformedDateReportsDatetime(t *testing.T) {
	errs := GetValidationErrors(ValidateStruct(periodo{Inicio: "01/02/2025", Fim: "2025-01-31"}))
	require.Len(t, errs, 1)
	assert.Equal(t, "periodoInicio", errs[0].Field)
	assert.Equal(t, "datetime", errs[0].Tag)
}

func TestParseDateKeepsDateOfTimestamp(t *testing.T) {
	d, err := ParseDate("2025-03-04T10:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), d)
}

func TestSessionJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")
	id := uuid.New()

	token, err := GenerateSessionJWT(id, 42, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateSessionJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.SessionID)
	assert.Equal(t, int64(42), claims.UsuarioID)

	SetJWTSecret("another-secret")
	_, err = ValidateSessionJWT(token)
	assert.Error(t, err)
}

func TestTokenExpiryReadsUnverifiedClaim(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	upstream, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("upstream-secret-we-never-see"))
	require.NoError(t, err)

	got, ok := TokenExpiry(upstream)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)
}

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	sealed, err := s.Seal("upstream-access-token")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "upstream-access-token")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "upstream-access-token", plain)

	other, err := NewSealer("different passphrase")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.Error(t, err)

	_, err = s.Open([]byte("short"))
	assert.Error(t, err)
}
