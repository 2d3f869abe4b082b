package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/moebelhaus/shop-backend/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestGenerateAndVerify(t *testing.T) {
	token, issued, err := GenerateToken(secret, "open-1", "Max", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := VerifyToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "open-1", claims.OpenID)
	assert.Equal(t, "Max", claims.Name)
	assert.Equal(t, issued.ID, claims.ID)
	assert.InDelta(t, time.Hour.Seconds(), claims.RemainingTTL(time.Now()).Seconds(), 5)
}

func TestVerifyRejectsInvalidTokens(t *testing.T) {
	token, _, err := GenerateToken(secret, "open-1", "", time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken([]byte("other-secret"), token)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	expired, _, err := GenerateToken(secret, "open-1", "", -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken(secret, expired)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = VerifyToken(secret, "not-a-token")
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	// 沒有 openId 的 token
	bare, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = VerifyToken(secret, bare)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	// 不接受其他簽章演算法
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{OpenID: "open-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = VerifyToken(secret, none)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestGenerateRequiresSecretAndOpenID(t *testing.T) {
	_, _, err := GenerateToken(nil, "open-1", "", time.Hour)
	assert.Error(t, err)
	_, _, err = GenerateToken(secret, "", "", time.Hour)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
