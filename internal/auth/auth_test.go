// internal/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

// signToken issues a token the way the external auth service does.
func signToken(t *testing.T, userID int64, role string, secret string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	t.Run("ValidTokenYieldsIdentity", func(t *testing.T) {
		token := signToken(t, 7, "admin", testSecret, time.Minute)

		identity, err := ValidateToken(token, testSecret)

		require.NoError(t, err)
		assert.Equal(t, int64(7), identity.UserID)
		assert.Equal(t, RoleAdmin, identity.Role)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token := signToken(t, 7, "user", testSecret, -time.Minute)

		_, err := ValidateToken(token, testSecret)

		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signToken(t, 7, "user", "other-secret", time.Minute)

		_, err := ValidateToken(token, testSecret)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("UnknownRoleRejected", func(t *testing.T) {
		token := signToken(t, 7, "superuser", testSecret, time.Minute)

		_, err := ValidateToken(token, testSecret)

		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("EmptySecret", func(t *testing.T) {
		token := signToken(t, 7, "user", testSecret, time.Minute)

		_, err := ValidateToken(token, "")

		assert.ErrorIs(t, err, ErrEmptyJWTSecret)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := ValidateToken("not.a.token", testSecret)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"admin", RoleAdmin, true},
		{"ADMIN", RoleAdmin, true},
		{"user", RoleUser, true},
		{"service", RoleService, true},
		{"root", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}
}
