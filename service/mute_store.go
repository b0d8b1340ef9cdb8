package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// MuteStore is the time-bounded chat suppression store, keyed by
// (community, user). Absence means "not muted"; a duration <= 0 deletes the
// entry. Both implementations honor the same contract so callers never care
// which backing is active.
type MuteStore interface {
	// IsMuted reports whether the user is currently muted in the community
	// and, when muted, the expiry instant.
	IsMuted(ctx context.Context, communityID, userID uint64) (bool, *time.Time, error)

	// SetMute mutes the user for `seconds` (overwriting any existing entry),
	// or unmutes when seconds <= 0.
	SetMute(ctx context.Context, communityID, userID uint64, seconds int) error
}

// NewMuteStore picks the backing once at startup: Redis when a client is
// configured, the in-process map otherwise.
func NewMuteStore(rdb *redis.Client) MuteStore {
	if rdb != nil {
		return NewRedisMuteStore(rdb)
	}
	return NewMemoryMuteStore()
}

// RedisMuteStore keeps one self-expiring key per mute so every server
// process observes the same state and expiry needs no sweeper.
//
// Redis key: lib:mute:{communityID}:{userID} -> "1" (TTL = remaining mute)
//
// When Redis is unreachable the store degrades to an embedded in-process
// fallback instead of failing the request; the degradation is internal so
// callers still see one contract.
type RedisMuteStore struct {
	rdb      *redis.Client
	fallback *MemoryMuteStore
}

func NewRedisMuteStore(rdb *redis.Client) *RedisMuteStore {
	return &RedisMuteStore{rdb: rdb, fallback: NewMemoryMuteStore()}
}

func (s *RedisMuteStore) key(communityID, userID uint64) string {
	return fmt.Sprintf("lib:mute:%d:%d", communityID, userID)
}

func (s *RedisMuteStore) IsMuted(ctx context.Context, communityID, userID uint64) (bool, *time.Time, error) {
	ttl, err := s.rdb.TTL(ctx, s.key(communityID, userID)).Result()
	if err != nil {
		log.Printf("mute store: redis unavailable, using in-process fallback: %v", err)
		return s.fallback.IsMuted(ctx, communityID, userID)
	}
	// TTL returns a negative duration when the key is missing or has no
	// expiry; only a positive remainder counts as an active mute.
	if ttl <= 0 {
		return false, nil, nil
	}
	until := time.Now().Add(ttl)
	return true, &until, nil
}

func (s *RedisMuteStore) SetMute(ctx context.Context, communityID, userID uint64, seconds int) error {
	key := s.key(communityID, userID)
	var err error
	if seconds > 0 {
		err = s.rdb.Set(ctx, key, "1", time.Duration(seconds)*time.Second).Err()
	} else {
		err = s.rdb.Del(ctx, key).Err()
	}
	if err != nil {
		log.Printf("mute store: redis unavailable, using in-process fallback: %v", err)
		return s.fallback.SetMute(ctx, communityID, userID, seconds)
	}
	return nil
}

type muteKey struct {
	communityID uint64
	userID      uint64
}

// MemoryMuteStore is the single-process fallback: a mutex-guarded map with
// expiry checked lazily on read. Safe for concurrent handler goroutines.
type MemoryMuteStore struct {
	mu      sync.Mutex
	entries map[muteKey]time.Time

	// now is swappable in tests.
	now func() time.Time
}

func NewMemoryMuteStore() *MemoryMuteStore {
	return &MemoryMuteStore{
		entries: make(map[muteKey]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryMuteStore) IsMuted(_ context.Context, communityID, userID uint64) (bool, *time.Time, error) {
	k := muteKey{communityID, userID}
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.entries[k]
	if !ok {
		return false, nil, nil
	}
	if !until.After(s.now()) {
		delete(s.entries, k)
		return false, nil, nil
	}
	u := until
	return true, &u, nil
}

func (s *MemoryMuteStore) SetMute(_ context.Context, communityID, userID uint64, seconds int) error {
	k := muteKey{communityID, userID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds <= 0 {
		delete(s.entries, k)
		return nil
	}
	s.entries[k] = s.now().Add(time.Duration(seconds) * time.Second)
	return nil
}
