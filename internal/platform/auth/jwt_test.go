package auth

import (
	"testing"
	"time"
)

func TestTokenManagerIssueAndVerify(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	token, err := manager.Issue(Identity{
		AccountID: "acct-1",
		Email:     "shopper@example.com",
		Roles:     []string{RoleCustomer},
	})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	identity, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if identity.AccountID != "acct-1" {
		t.Fatalf("unexpected account ID: %q", identity.AccountID)
	}
	if identity.Email != "shopper@example.com" {
		t.Fatalf("unexpected email: %q", identity.Email)
	}
	if !identity.HasRole(RoleCustomer) {
		t.Fatalf("expected customer role, got %v", identity.Roles)
	}
	if identity.HasRole(RoleAdmin) {
		t.Fatal("did not expect admin role")
	}
}

func TestTokenManagerRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	issuer, err := NewTokenManager("test-secret", time.Hour, WithClock(func() time.Time { return issuedAt }))
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	token, err := issuer.Issue(Identity{AccountID: "acct-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	verifier, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestTokenManagerRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("secret-a", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	token, err := issuer.Issue(Identity{AccountID: "acct-1"})
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	verifier, err := NewTokenManager("secret-b", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected token signed with different secret to fail")
	}
}

func TestTokenManagerRejectsGarbage(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	for _, raw := range []string{"", "   ", "not-a-token"} {
		if _, err := manager.Verify(raw); err == nil {
			t.Fatalf("expected error for token %q", raw)
		}
	}
}
