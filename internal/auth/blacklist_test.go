package auth

import (
	"context"
	"testing"
	"time"
)

func TestMemoryBlacklist(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()

	if bl.IsRevoked(ctx, "jti-1") {
		t.Fatal("unknown jti reported revoked")
	}
	if err := bl.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if !bl.IsRevoked(ctx, "jti-1") {
		t.Fatal("revoked jti reported valid")
	}
	if bl.IsRevoked(ctx, "jti-2") {
		t.Fatal("unrelated jti reported revoked")
	}
}

func TestMemoryBlacklistExpiry(t *testing.T) {
	bl := NewMemoryBlacklist()
	ctx := context.Background()

	if err := bl.Revoke(ctx, "short", time.Millisecond); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if bl.IsRevoked(ctx, "short") {
		t.Fatal("entry past its expiry still reported revoked")
	}
}

func TestNewBlacklistFallsBackWithoutRedis(t *testing.T) {
	bl := NewBlacklist(nil)
	if _, ok := bl.(*MemoryBlacklist); !ok {
		t.Fatalf("expected memory blacklist without redis, got %T", bl)
	}
}
