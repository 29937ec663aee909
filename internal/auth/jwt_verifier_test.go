package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret"

// signToken はテスト用のHS256トークンを発行するヘルパー。
func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestJWTVerifier_ValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwtClaims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	v := NewJWTVerifier(testSecret)
	identity, err := v.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyToken error = %v", err)
	}

	if identity.ID != "user-123" {
		t.Errorf("identity.ID = %q, want %q", identity.ID, "user-123")
	}
	if identity.Email != "user@example.com" {
		t.Errorf("identity.Email = %q, want %q", identity.Email, "user@example.com")
	}
}

func TestJWTVerifier_ExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	v := NewJWTVerifier(testSecret)
	if _, err := v.VerifyToken(context.Background(), token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	v := NewJWTVerifier(testSecret)
	if _, err := v.VerifyToken(context.Background(), token); err == nil {
		t.Fatal("expected error for wrong signature")
	}
}

func TestJWTVerifier_MissingSubject(t *testing.T) {
	token := signToken(t, testSecret, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	v := NewJWTVerifier(testSecret)
	_, err := v.VerifyToken(context.Background(), token)
	if err == nil {
		t.Fatal("expected error for missing sub claim")
	}
	if !strings.Contains(err.Error(), "sub") {
		t.Errorf("error = %v, should mention sub claim", err)
	}
}

func TestJWTVerifier_Garbage(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	if _, err := v.VerifyToken(context.Background(), "not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
