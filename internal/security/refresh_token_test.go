package security

import (
	"testing"
)

func TestNewRefreshToken(t *testing.T) {
	secret, hash, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if secret == "" {
		t.Fatal("secret should not be empty")
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(hash))
	}
	if hash != HashRefreshToken(secret) {
		t.Error("returned hash should be the hash of the returned secret")
	}

	secret2, hash2, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if secret == secret2 || hash == hash2 {
		t.Error("two generated tokens should differ")
	}
}

func TestHashRefreshToken_Consistent(t *testing.T) {
	secret := "test-refresh-secret-123"
	hash1 := HashRefreshToken(secret)
	hash2 := HashRefreshToken(secret)

	if hash1 != hash2 {
		t.Errorf("HashRefreshToken not consistent: hash1 = %q, hash2 = %q", hash1, hash2)
	}
	if len(hash1) != 64 {
		t.Errorf("hash length = %d, want 64 (SHA-256 hex)", len(hash1))
	}
}

func TestHashRefreshToken_DifferentSecrets(t *testing.T) {
	if HashRefreshToken("secret-1") == HashRefreshToken("secret-2") {
		t.Error("HashRefreshToken produced same hash for different secrets")
	}
}

func TestRefreshTokenHashEqual(t *testing.T) {
	secret := "test-refresh-secret-456"
	storedHash := HashRefreshToken(secret)

	if !RefreshTokenHashEqual(secret, storedHash) {
		t.Error("RefreshTokenHashEqual should match correct secret")
	}
	if RefreshTokenHashEqual("wrong-secret", storedHash) {
		t.Error("RefreshTokenHashEqual should reject incorrect secret")
	}
}

func TestTokenHashPrefix(t *testing.T) {
	hash := HashRefreshToken("some-secret")
	prefix := TokenHashPrefix(hash)
	if len(prefix) != 8 {
		t.Errorf("prefix length = %d, want 8", len(prefix))
	}
	if hash[:8] != prefix {
		t.Errorf("prefix = %q, want %q", prefix, hash[:8])
	}
	if got := TokenHashPrefix("abc"); got != "abc" {
		t.Errorf("short hash prefix = %q, want %q", got, "abc")
	}
}
