package auth

import (
	"testing"
	"time"
)

func TestHashPassword_Deterministic(t *testing.T) {
	t.Parallel()

	h1 := HashPassword("secret", "salt")
	h2 := HashPassword("secret", "salt")
	if h1 != h2 {
		t.Fatalf("same input produced different digests: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestHashPassword_SaltChangesDigest(t *testing.T) {
	t.Parallel()

	if HashPassword("secret", "salt-a") == HashPassword("secret", "salt-b") {
		t.Fatal("different salts produced the same digest")
	}
}

func TestCheckPasswordHash(t *testing.T) {
	t.Parallel()

	hash := HashPassword("secret", "salt")
	if !CheckPasswordHash("secret", "salt", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPasswordHash("wrong", "salt", hash) {
		t.Fatal("wrong password accepted")
	}
	if CheckPasswordHash("secret", "other-salt", hash) {
		t.Fatal("wrong salt accepted")
	}
}

func TestGenerateAndParseJWT(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateJWT(secret, "user-1", "dispatcher", "admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	claims, err := ParseJWT(secret, tok)
	if err != nil {
		t.Fatalf("ParseJWT error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Username != "dispatcher" || claims.Role != "admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseJWT_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateJWT(secret, "user-1", "dispatcher", "admin", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	if _, err := ParseJWT(secret, tok); err == nil {
		t.Fatal("expected error for expired token, got nil")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateJWT([]byte("right-secret"), "user-1", "dispatcher", "admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	if _, err := ParseJWT([]byte("wrong-secret"), tok); err == nil {
		t.Fatal("expected error for wrong secret, got nil")
	}
}

func TestGenerateJWT_NonPositiveExpirationUsesDefault(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateJWT(secret, "user-1", "dispatcher", "driver", 0)
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	claims, err := ParseJWT(secret, tok)
	if err != nil {
		t.Fatalf("ParseJWT error: %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 6*24*time.Hour || remaining > DefaultExpiration {
		t.Fatalf("expected ~7d expiry, got %v remaining", remaining)
	}
}
