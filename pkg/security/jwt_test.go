package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg *JWTConfig) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(cfg)
	require.NoError(t, err)
	return m
}

func TestGenerateAndValidate(t *testing.T) {
	m := newTestManager(t, &JWTConfig{SecretKey: "arena-secret", Issuer: "arena"})

	token, err := m.GenerateToken(map[string]any{"uid": int64(1001), "username": "ash"})
	require.NoError(t, err)

	claims, err := m.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "arena", claims.Issuer)
	assert.Equal(t, "ash", claims.Get("username"))

	var uid int64
	require.NoError(t, claims.UnmarshalKey("uid", &uid))
	assert.Equal(t, int64(1001), uid)

	assert.ErrorIs(t, claims.UnmarshalKey("missing", &uid), ErrClaimMissing)
}

func TestValidateErrors(t *testing.T) {
	m := newTestManager(t, &JWTConfig{SecretKey: "arena-secret"})
	other := newTestManager(t, &JWTConfig{SecretKey: "other-secret"})
	expired := newTestManager(t, &JWTConfig{SecretKey: "arena-secret", ExpiresIn: -time.Minute})

	token, err := other.GenerateToken(map[string]any{"uid": 1})
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrSignatureInvalid)

	token, err = expired.GenerateToken(map[string]any{"uid": 1})
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = m.ValidateToken("Bearer ")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestNewJWTManagerValidation(t *testing.T) {
	_, err := NewJWTManager(&JWTConfig{})
	assert.ErrorIs(t, err, ErrSecretKeyEmpty)

	_, err = NewJWTManager(&JWTConfig{SecretKey: "x", Algorithm: "none"})
	assert.Error(t, err)
}

func TestClaimsGetNested(t *testing.T) {
	c := &Claims{Payload: map[string]any{"profile": map[string]any{"name": "misty"}}}
	assert.Equal(t, "misty", c.Get("profile.name"))
	assert.Nil(t, c.Get("profile.age"))
	assert.Nil(t, (&Claims{}).Get("uid"))
}
