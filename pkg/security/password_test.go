package security_test

import (
	"testing"

	"github.com/newswirehq/newswire-backend/pkg/config"
	"github.com/newswirehq/newswire-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestProvisionCostHashStillVerifies(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:     65536,
		ArgonTime:         3,
		ArgonParallelism:  2,
		ArgonSaltLen:      16,
		ArgonKeyLen:       32,
		ProvisionMemoryKB: 8,
		ProvisionTime:     1,
	}

	secret, err := security.GenerateSecret(16)
	if err != nil {
		t.Fatalf("GenerateSecret returned error: %v", err)
	}

	hash, err := security.HashPassword(secret, cfg.Provision())
	if err != nil {
		t.Fatalf("HashPassword with provision params returned error: %v", err)
	}

	ok, err := security.VerifyPassword(secret, hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("generated secret must verify against its own hash")
	}
}

func TestGenerateSecret(t *testing.T) {
	secret, err := security.GenerateSecret(16)
	if err != nil {
		t.Fatalf("GenerateSecret returned error: %v", err)
	}
	if len(secret) != 32 {
		t.Fatalf("expected 32 hex chars for 16 bytes, got %d", len(secret))
	}

	other, err := security.GenerateSecret(16)
	if err != nil {
		t.Fatalf("GenerateSecret returned error: %v", err)
	}
	if secret == other {
		t.Fatal("two generated secrets should differ")
	}

	if _, err := security.GenerateSecret(0); err == nil {
		t.Fatal("expected error for non-positive byte length")
	}
}
