package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(sub string) Claims {
	return Claims{
		Email: "ops@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestParseValid(t *testing.T) {
	id := uuid.New()
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(id.String()))

	principal, err := NewParser(testSecret).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, principal.UserID)
	assert.Equal(t, "ops@example.com", principal.Email)
}

func TestParseRejects(t *testing.T) {
	parser := NewParser(testSecret)
	id := uuid.New().String()

	expired := validClaims(id)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExp := validClaims(id)
	noExp.ExpiresAt = nil

	cases := map[string]string{
		"wrong secret":    sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims(id)),
		"expired":         sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"no expiry":       sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExp),
		"subject not id":  sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("anon")),
		"other algorithm": sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(id)),
		"garbage":         "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parser.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
