// Package middleware - Test parse session token: chữ ký HMAC, hết hạn, thuật toán giả mạo.
package middleware

import (
	"testing"
	"time"

	"meta_content/config"
	"meta_content/internal/common"
	"meta_content/internal/global"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func init() {
	global.ServerConfig = &config.Configuration{JwtSecret: testSecret}
}

func signToken(t *testing.T, claims SessionClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseSessionToken_Valid(t *testing.T) {
	tokenString := signToken(t, SessionClaims{
		CanSchedule: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "695f7b38cbf62dba0fb094cb",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	claims, err := parseSessionToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "695f7b38cbf62dba0fb094cb", claims.Subject)
	assert.True(t, claims.CanSchedule)
}

func TestParseSessionToken_Expired(t *testing.T) {
	tokenString := signToken(t, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "695f7b38cbf62dba0fb094cb",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, testSecret)

	_, err := parseSessionToken(tokenString)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	tokenString := signToken(t, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "695f7b38cbf62dba0fb094cb",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, "secret-khac")

	_, err := parseSessionToken(tokenString)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestParseSessionToken_MissingSubject(t *testing.T) {
	tokenString := signToken(t, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, testSecret)

	_, err := parseSessionToken(tokenString)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestParseSessionToken_NoneAlgorithmRejected(t *testing.T) {
	// Token "alg: none" phải bị từ chối dù payload hợp lệ
	token := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "695f7b38cbf62dba0fb094cb",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = parseSessionToken(tokenString)
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}

func TestParseSessionToken_Garbage(t *testing.T) {
	_, err := parseSessionToken("khong-phai-jwt")
	assert.ErrorIs(t, err, common.ErrTokenInvalid)
}
