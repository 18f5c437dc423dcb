package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestParseValidToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, "secret", jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   "MANAGER",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	parser := NewParser("secret")
	claims, err := parser.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id mismatch: %v", claims.UserID)
	}
	if claims.Role != "MANAGER" {
		t.Fatalf("role mismatch: %q", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "secret", jwt.SigningMethodHS256, Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	parser := NewParser("other-secret")
	if _, err := parser.Parse(token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token := signToken(t, "secret", jwt.SigningMethodHS256, Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	parser := NewParser("secret")
	if _, err := parser.Parse(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	parser := NewParser("secret")
	if _, err := parser.Parse("not.a.token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}
