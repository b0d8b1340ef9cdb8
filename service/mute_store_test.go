package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestMemoryMuteStore_ExpiryAndUnmute(t *testing.T) {
	store := NewMemoryMuteStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.SetMute(ctx, 1, 2, 60); err != nil {
		t.Fatalf("SetMute: %v", err)
	}

	muted, until, err := store.IsMuted(ctx, 1, 2)
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if !muted {
		t.Fatalf("expected muted")
	}
	if until == nil || !until.Equal(now.Add(60*time.Second)) {
		t.Fatalf("expected expiry at +60s, got %v", until)
	}

	// other (community, user) pairs are unaffected
	if muted, _, _ := store.IsMuted(ctx, 1, 3); muted {
		t.Fatalf("user 3 should not be muted")
	}
	if muted, _, _ := store.IsMuted(ctx, 9, 2); muted {
		t.Fatalf("community 9 should not be muted")
	}

	// past the expiry the mute lapses without any explicit unmute
	now = now.Add(61 * time.Second)
	if muted, _, _ := store.IsMuted(ctx, 1, 2); muted {
		t.Fatalf("mute should have expired")
	}

	// re-mute then unmute with seconds <= 0
	if err := store.SetMute(ctx, 1, 2, 60); err != nil {
		t.Fatalf("SetMute again: %v", err)
	}
	if err := store.SetMute(ctx, 1, 2, 0); err != nil {
		t.Fatalf("SetMute zero: %v", err)
	}
	if muted, _, _ := store.IsMuted(ctx, 1, 2); muted {
		t.Fatalf("expected unmuted after seconds=0")
	}
}

func TestMemoryMuteStore_OverwriteExtends(t *testing.T) {
	store := NewMemoryMuteStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.SetMute(ctx, 1, 2, 10); err != nil {
		t.Fatalf("SetMute: %v", err)
	}
	if err := store.SetMute(ctx, 1, 2, 300); err != nil {
		t.Fatalf("SetMute overwrite: %v", err)
	}

	_, until, err := store.IsMuted(ctx, 1, 2)
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if until == nil || !until.Equal(now.Add(300*time.Second)) {
		t.Fatalf("expected overwritten expiry at +300s, got %v", until)
	}
}

func TestRedisMuteStore_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisMuteStore(rdb)
	ctx := context.Background()

	if err := store.SetMute(ctx, 5, 7, 120); err != nil {
		t.Fatalf("SetMute: %v", err)
	}

	muted, until, err := store.IsMuted(ctx, 5, 7)
	if err != nil {
		t.Fatalf("IsMuted: %v", err)
	}
	if !muted || until == nil {
		t.Fatalf("expected muted with expiry, got muted=%v until=%v", muted, until)
	}

	// miniredis only advances TTLs on FastForward
	mr.FastForward(121 * time.Second)
	if muted, _, _ := store.IsMuted(ctx, 5, 7); muted {
		t.Fatalf("mute should have expired")
	}

	if err := store.SetMute(ctx, 5, 7, 120); err != nil {
		t.Fatalf("SetMute again: %v", err)
	}
	if err := store.SetMute(ctx, 5, 7, -1); err != nil {
		t.Fatalf("SetMute negative: %v", err)
	}
	if muted, _, _ := store.IsMuted(ctx, 5, 7); muted {
		t.Fatalf("expected unmuted after delete")
	}
}

func TestRedisMuteStore_FallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisMuteStore(rdb)
	ctx := context.Background()

	mr.Close()

	// with redis gone both operations land on the in-process fallback and
	// still satisfy the contract
	if err := store.SetMute(ctx, 1, 2, 60); err != nil {
		t.Fatalf("SetMute via fallback: %v", err)
	}
	muted, _, err := store.IsMuted(ctx, 1, 2)
	if err != nil {
		t.Fatalf("IsMuted via fallback: %v", err)
	}
	if !muted {
		t.Fatalf("expected fallback mute to hold")
	}
}

func TestNewMuteStore_Selection(t *testing.T) {
	if _, ok := NewMuteStore(nil).(*MemoryMuteStore); !ok {
		t.Fatalf("nil client should select the memory store")
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	if _, ok := NewMuteStore(rdb).(*RedisMuteStore); !ok {
		t.Fatalf("configured client should select the redis store")
	}
}
