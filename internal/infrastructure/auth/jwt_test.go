package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizhub/internal/shared/authorization"
)

func TestJWTService_GenerateAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", 15)

	token, err := svc.Generate(7, "sess-1", 3, authorization.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(900), token.ExpiresIn)

	claims, err := svc.Verify(token.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, uint(3), claims.TenantID)
	assert.Equal(t, authorization.RoleAdmin, claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 15).Generate(1, "s", 1, authorization.RoleViewer)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 15).Verify(token.Token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	claims := &Claims{
		UserID:    1,
		SessionID: "s",
		TenantID:  1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewJWTService("k", 15).Verify(signed)
	assert.Error(t, err)
}

func TestJWTService_RejectsMissingSession(t *testing.T) {
	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewJWTService("k", 15).Verify(signed)
	assert.Error(t, err)
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(4)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NoError(t, h.Verify("correct horse", hash))
	assert.Error(t, h.Verify("wrong", hash))
	assert.Error(t, h.Verify("correct horse", "not-a-hash"))

	h.Burn("anything")
}
