package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-identity-secret"

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerifyToken_HS256(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, "")
	require.NoError(t, err)

	token := signHS256(t, jwt.MapClaims{
		"sub":     "user_123",
		"name":    "Royce",
		"email":   "royce@example.com",
		"picture": "https://img/royce.png",
		"role":    "seller",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	payload, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user_123", payload.UserID)
	require.Equal(t, "Royce", payload.Name)
	require.True(t, payload.IsSeller())
}

func TestVerifyToken_MetadataRole(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, "")
	require.NoError(t, err)

	token := signHS256(t, jwt.MapClaims{
		"sub":      "user_1",
		"metadata": map[string]any{"role": "seller"},
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	payload, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	require.True(t, payload.IsSeller())
}

func TestVerifyToken_Rejects(t *testing.T) {
	v, err := NewJWTVerifier(testSecret, "", WithIssuer("https://issuer.example"))
	require.NoError(t, err)

	testCases := []struct {
		name   string
		claims jwt.MapClaims
		secret string
	}{
		{
			name:   "expired",
			claims: jwt.MapClaims{"sub": "u", "iss": "https://issuer.example", "exp": time.Now().Add(-time.Hour).Unix()},
			secret: testSecret,
		},
		{
			name:   "missing exp",
			claims: jwt.MapClaims{"sub": "u", "iss": "https://issuer.example"},
			secret: testSecret,
		},
		{
			name:   "wrong secret",
			claims: jwt.MapClaims{"sub": "u", "iss": "https://issuer.example", "exp": time.Now().Add(time.Hour).Unix()},
			secret: "other",
		},
		{
			name:   "wrong issuer",
			claims: jwt.MapClaims{"sub": "u", "iss": "https://evil.example", "exp": time.Now().Add(time.Hour).Unix()},
			secret: testSecret,
		},
		{
			name:   "missing subject",
			claims: jwt.MapClaims{"iss": "https://issuer.example", "exp": time.Now().Add(time.Hour).Unix()},
			secret: testSecret,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc.claims).SignedString([]byte(tc.secret))
			require.NoError(t, err)

			_, err = v.VerifyToken(context.Background(), token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = v.VerifyToken(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_RS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewJWTVerifier("", string(pubPEM))
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "user_rs",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	payload, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user_rs", payload.UserID)
	require.False(t, payload.IsSeller())

	// HS256 token 不可通過 RS256 驗證器
	_, err = v.VerifyToken(context.Background(), signHS256(t, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTVerifier_MissingKey(t *testing.T) {
	_, err := NewJWTVerifier("", "")
	require.ErrorIs(t, err, ErrMissingKey)
}
