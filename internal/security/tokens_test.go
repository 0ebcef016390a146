package security

import (
	"testing"
	"time"
)

func TestTokenProvider_IssueAndVerifyAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	token, expiresAt, err := p.IssueAccess("subj-1", "hr_manager", "employee", "jane@co.com")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("IssueAccess returned empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expiresAt should be in the future")
	}

	claims, err := p.VerifyAccess(token)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "subj-1" {
		t.Errorf("Subject = %q, want subj-1", claims.Subject)
	}
	if claims.Role != "hr_manager" {
		t.Errorf("Role = %q, want hr_manager", claims.Role)
	}
	if claims.PrincipalType != "employee" {
		t.Errorf("PrincipalType = %q, want employee", claims.PrincipalType)
	}
	if claims.Email != "jane@co.com" {
		t.Errorf("Email = %q, want jane@co.com", claims.Email)
	}
}

func TestTokenProvider_VerifyAccessInvalid(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := p.VerifyAccess(tok); err != ErrInvalidToken {
			t.Errorf("VerifyAccess(%q): want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestTokenProvider_VerifyAccessWrongIssuer(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	other := NewTokenProvider(signer, pub, "other-issuer", "test-audience", 30*time.Minute)
	token, _, err := other.IssueAccess("subj-1", "employee", "employee", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	p, _ := NewTestTokenProvider()
	if _, err := p.VerifyAccess(token); err != ErrInvalidToken {
		t.Errorf("VerifyAccess with wrong issuer: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_VerifyAccessExpired(t *testing.T) {
	signer, _ := ParsePrivateKey(testPrivateKeyPEM)
	pub, _ := ParsePublicKey(testPublicKeyPEM)
	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", -1*time.Minute)

	token, _, err := p.IssueAccess("subj-1", "employee", "employee", "")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.VerifyAccess(token); err != ErrInvalidToken {
		t.Errorf("VerifyAccess of expired token: want ErrInvalidToken, got %v", err)
	}
}
