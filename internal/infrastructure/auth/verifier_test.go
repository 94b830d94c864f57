package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestVerifyValidToken(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "user-42",
		"name": "Dana",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	principal, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if principal.Subject != "user-42" {
		t.Errorf("subject = %q, want user-42", principal.Subject)
	}
	if principal.Name != "Dana" {
		t.Errorf("name = %q, want Dana", principal.Name)
	}
}

func TestVerifyRejections(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage", "not.a.jwt"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"no expiry", signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-42",
		})},
		{"no subject", signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Verify(%s) = %v, want ErrInvalidToken", tc.name, err)
			}
		})
	}
}
