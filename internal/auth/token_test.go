package auth

import (
	"context"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	m := NewTokenManagerWithClock("secret", time.Hour, func() time.Time { return now })

	token, issued, err := m.Issue("u1", "a@example.com", "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	got, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.UserID != "u1" || got.Email != "a@example.com" || got.Name != "Alice" {
		t.Fatalf("unexpected identity %+v", got)
	}
	if got.TokenID == "" || got.TokenID != issued.TokenID {
		t.Fatalf("expected token id %q, got %q", issued.TokenID, got.TokenID)
	}
	if !got.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(time.Hour), got.ExpiresAt)
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	clock := now
	m := NewTokenManagerWithClock("secret", time.Minute, func() time.Time { return clock })
	token, _, err := m.Issue("u1", "a@example.com", "Alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewTokenManager("other-secret", time.Minute)
	if _, err := other.Parse(token); err == nil {
		t.Fatalf("expected signature failure")
	}

	clock = now.Add(2 * time.Minute)
	if _, err := m.Parse(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}

	if _, err := m.Parse("not-a-token"); err == nil {
		t.Fatalf("expected garbage to fail")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("expected match")
	}
	if CheckPassword(hash, "wrong") || CheckPassword("not-a-hash", "s3cret") {
		t.Fatalf("expected mismatch")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := IdentityFromContext(ctx); ok || RequesterID(ctx) != "" {
		t.Fatalf("expected anonymous context")
	}
	ctx = WithIdentity(ctx, Identity{UserID: "u1"})
	if RequesterID(ctx) != "u1" {
		t.Fatalf("expected u1, got %q", RequesterID(ctx))
	}
}
