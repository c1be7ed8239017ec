package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRevocationStoreSetsExpiringKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewRevocationStore(newClient(mr))

	if err := store.Revoke(ctx, "t1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !mr.Exists("revoked:token:t1") {
		t.Fatalf("expected redis key to be set")
	}
	if revoked, err := store.IsRevoked(ctx, "t1"); err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}

	mr.FastForward(2 * time.Hour)
	if revoked, _ := store.IsRevoked(ctx, "t1"); revoked {
		t.Fatalf("expected key to expire with the token")
	}

	if err := store.Revoke(ctx, "t2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("revoke expired: %v", err)
	}
	if mr.Exists("revoked:token:t2") {
		t.Fatalf("already expired tokens need no marker")
	}
}
