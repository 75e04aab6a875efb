package goPerm

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStoreMaskRoundTrip(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "gp-test")
	ctx := context.Background()

	mask, err := store.Mask(ctx, userX)
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	if mask != MaskNone {
		t.Fatalf("expected MaskNone for unknown principal, got %s", mask)
	}

	if err := store.SetMask(ctx, userX, 0xA5); err != nil {
		t.Fatalf("SetMask failed: %v", err)
	}
	mask, err = store.Mask(ctx, userX)
	if err != nil {
		t.Fatalf("Mask failed: %v", err)
	}
	if mask != 0xA5 {
		t.Fatalf("expected 0xa5, got %s", mask)
	}
}

func TestRedisStoreAdminLifecycle(t *testing.T) {
	_, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "gp-test")
	ctx := context.Background()

	_, initialized, err := store.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin failed: %v", err)
	}
	if initialized {
		t.Fatal("fresh store must report uninitialized")
	}

	if err := store.SetAdmin(ctx, adminA); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
	admin, initialized, err := store.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin failed: %v", err)
	}
	if !initialized || admin != adminA {
		t.Fatalf("expected initialized admin %q, got %q/%v", adminA, admin, initialized)
	}

	// A renounced registry stays initialized with an empty admin.
	if err := store.SetAdmin(ctx, NoPrincipal); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
	admin, initialized, err = store.Admin(ctx)
	if err != nil {
		t.Fatalf("Admin failed: %v", err)
	}
	if !initialized || admin != NoPrincipal {
		t.Fatal("expected renounced-but-initialized state")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisStore(rdb, "gp-test")
	ctx := context.Background()

	mr.Close()

	if _, err := store.Mask(ctx, userX); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if err := store.SetMask(ctx, userX, 0x01); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, _, err := store.Admin(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestRedisBackedRegistryPersistsAcrossReopen(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	reg, err := New().WithRedis(rdb).WithInitialAdmin(adminA).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := reg.SetPermission(ctx, adminA, userX, 0x42); err != nil {
		t.Fatalf("SetPermission failed: %v", err)
	}
	if err := reg.TransferAdmin(ctx, adminA, adminB); err != nil {
		t.Fatalf("TransferAdmin failed: %v", err)
	}
	reg.Close()

	// Reopening adopts the stored admin; the initial admin argument is
	// ignored for a populated store.
	reopened, err := New().WithRedis(rdb).WithInitialAdmin(adminA).Build()
	if err != nil {
		t.Fatalf("reopen Build failed: %v", err)
	}
	defer reopened.Close()

	if admin, _ := reopened.Admin(ctx); admin != adminB {
		t.Fatalf("expected adopted admin %q, got %q", adminB, admin)
	}
	if mask, _ := reopened.GetPermission(ctx, userX); mask != 0x42 {
		t.Fatalf("expected persisted mask 0x42, got %s", mask)
	}
}

func TestRedisBackedRegistryRenounceSurvivesReopen(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	reg, err := New().WithRedis(rdb).WithInitialAdmin(adminA).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := reg.RenounceAdmin(ctx, adminA); err != nil {
		t.Fatalf("RenounceAdmin failed: %v", err)
	}
	reg.Close()

	// A renounced registry must not be resurrectable by reconstruction.
	reopened, err := New().WithRedis(rdb).WithInitialAdmin(adminB).Build()
	if err != nil {
		t.Fatalf("reopen Build failed: %v", err)
	}
	defer reopened.Close()

	if admin, _ := reopened.Admin(ctx); admin != NoPrincipal {
		t.Fatalf("expected renounced admin after reopen, got %q", admin)
	}
	if err := reopened.SetPermission(ctx, adminB, userX, 0x01); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected renounce to stay terminal across reopen, got %v", err)
	}
}
