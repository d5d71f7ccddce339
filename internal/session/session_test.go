package session

import (
	"context"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}

	sess, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if sess.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", sess.UserID)
	}
	if sess.IssuedAt.IsZero() {
		t.Error("IssuedAt not set")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	if _, err := m.Verify("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := &Manager{secret: []byte("test-secret"), ttl: -time.Hour}
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestContextRoundTrip(t *testing.T) {
	want := &Session{UserID: "user-1", IssuedAt: time.Now()}
	ctx := NewContext(context.Background(), want)

	got, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("FromContext failed: %v", err)
	}
	if got.UserID != want.UserID {
		t.Errorf("UserID = %q, want %q", got.UserID, want.UserID)
	}

	if _, err := FromContext(context.Background()); err != ErrNoSession {
		t.Errorf("empty context: err = %v, want ErrNoSession", err)
	}
}
