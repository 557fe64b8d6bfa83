package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pennywise-app/pennywise/internal/shared"
)

var testSecret = []byte("test-secret")

func TestGenerateAndVerifyToken(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := UserIDFromToken(token, testSecret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("user id mismatch: got %q", userID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := UserIDFromToken(token, testSecret); !errors.Is(err, shared.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	token, err := GenerateToken("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := UserIDFromToken(token, []byte("other-secret")); !errors.Is(err, shared.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestNonHS256AlgorithmRejected(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "user-1",
	})
	signed, err := token.SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := UserIDFromToken(signed, testSecret); !errors.Is(err, shared.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for non-HS256 token, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	if _, err := UserIDFromToken("not-a-token", testSecret); !errors.Is(err, shared.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
