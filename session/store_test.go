package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "auth:session", time.Hour, 0)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestCreateAndIsActive(t *testing.T) {
	store, mr, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", 42, "refresh-token"); err != nil {
		t.Fatalf("create: %v", err)
	}

	active, err := store.IsActive(ctx, "sid-1", 42)
	if err != nil {
		t.Fatalf("isActive: %v", err)
	}
	if !active {
		t.Fatal("expected session to be active")
	}

	// Ownership is part of liveness: another user id must not match.
	active, err = store.IsActive(ctx, "sid-1", 7)
	if err != nil {
		t.Fatalf("isActive wrong user: %v", err)
	}
	if active {
		t.Fatal("expected wrong-user check to fail")
	}

	ttl := mr.TTL("auth:session:sid-1")
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected armed TTL, got %v", ttl)
	}
}

func TestRecordStoresHashNotToken(t *testing.T) {
	store, mr, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	const raw = "raw-refresh-token"
	if err := store.Create(ctx, "sid-1", 1, raw); err != nil {
		t.Fatalf("create: %v", err)
	}

	stored := mr.HGet("auth:session:sid-1", "refreshHash")
	if stored == raw {
		t.Fatal("raw refresh token stored at rest")
	}
	if len(stored) != 64 {
		t.Fatalf("expected 64-char hex digest, got %q", stored)
	}
}

func TestValidateRefreshToken(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", 1, "token-a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := store.ValidateRefreshToken(ctx, "sid-1", 1, "token-a")
	if err != nil || !ok {
		t.Fatalf("expected valid token, got ok=%v err=%v", ok, err)
	}

	ok, err = store.ValidateRefreshToken(ctx, "sid-1", 1, "token-b")
	if err != nil || ok {
		t.Fatalf("expected mismatched token to fail, got ok=%v err=%v", ok, err)
	}

	ok, err = store.ValidateRefreshToken(ctx, "sid-1", 2, "token-a")
	if err != nil || ok {
		t.Fatalf("expected wrong user to fail, got ok=%v err=%v", ok, err)
	}

	ok, err = store.ValidateRefreshToken(ctx, "missing", 1, "token-a")
	if err != nil || ok {
		t.Fatalf("expected missing session to fail, got ok=%v err=%v", ok, err)
	}
}

func TestRotateReplacesHashAndRearmsTTL(t *testing.T) {
	store, mr, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", 1, "token-a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(30 * time.Minute)

	if err := store.Rotate(ctx, "sid-1", 1, "token-a", "token-b"); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	ok, err := store.ValidateRefreshToken(ctx, "sid-1", 1, "token-b")
	if err != nil || !ok {
		t.Fatalf("expected rotated token to validate, got ok=%v err=%v", ok, err)
	}

	// The previously issued token must fail after rotation.
	ok, err = store.ValidateRefreshToken(ctx, "sid-1", 1, "token-a")
	if err != nil || ok {
		t.Fatalf("expected pre-rotation token to fail, got ok=%v err=%v", ok, err)
	}

	ttl := mr.TTL("auth:session:sid-1")
	if ttl < 45*time.Minute {
		t.Fatalf("expected TTL re-armed to refresh lifetime, got %v", ttl)
	}
}

func TestRotateSentinelErrors(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Rotate(ctx, "missing", 1, "a", "b"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := store.Create(ctx, "sid-1", 1, "token-a"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Rotate(ctx, "sid-1", 2, "token-a", "token-b"); !errors.Is(err, ErrSessionInactive) {
		t.Fatalf("expected ErrSessionInactive for wrong user, got %v", err)
	}
	if err := store.Rotate(ctx, "sid-1", 1, "stale-token", "token-b"); !errors.Is(err, ErrRefreshHashMismatch) {
		t.Fatalf("expected ErrRefreshHashMismatch, got %v", err)
	}

	// Failed CAS attempts must not have clobbered the stored hash.
	ok, err := store.ValidateRefreshToken(ctx, "sid-1", 1, "token-a")
	if err != nil || !ok {
		t.Fatalf("expected original token still valid, got ok=%v err=%v", ok, err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", 1, "token-a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	active, err := store.IsActive(ctx, "sid-1", 1)
	if err != nil || active {
		t.Fatalf("expected deleted session inactive, got active=%v err=%v", active, err)
	}
	ok, err := store.ValidateRefreshToken(ctx, "sid-1", 1, "token-a")
	if err != nil || ok {
		t.Fatalf("expected deleted session to fail validation, got ok=%v err=%v", ok, err)
	}
}

func TestExpiredRecordIsInactive(t *testing.T) {
	store, mr, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	if err := store.Create(ctx, "sid-1", 1, "token-a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	active, err := store.IsActive(ctx, "sid-1", 1)
	if err != nil || active {
		t.Fatalf("expected expired session inactive, got active=%v err=%v", active, err)
	}
}

func TestStoreUnavailableWrapsSentinel(t *testing.T) {
	store, mr, done := newStoreTest(t)
	defer done()
	ctx := context.Background()
	mr.Close()

	if _, err := store.IsActive(ctx, "sid-1", 1); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := store.Create(ctx, "sid-1", 1, "t"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable on create, got %v", err)
	}
	if err := store.Rotate(ctx, "sid-1", 1, "a", "b"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable on rotate, got %v", err)
	}
}
