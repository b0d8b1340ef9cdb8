package service

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Service is the shared base every domain service embeds: database handles
// plus the injected publish callbacks. The callbacks decouple services from
// the websocket hub (no service imports it, tests swap in stubs).
type Service struct {
	DB          *gorm.DB
	RDB         *redis.Client
	TablePrefix string

	// Mutes is the time-bounded chat suppression store. Selected once at
	// engine construction (Redis-backed when a client is configured).
	Mutes MuteStore

	// PublishRoom fans an event out to every live connection subscribed to
	// one community room. Fire-and-forget; never part of a transaction.
	PublishRoom func(room, event string, payload map[string]any)

	// PublishGlobal fans an event out to every live connection, used for
	// live-session lifecycle events.
	PublishGlobal func(event string, payload map[string]any)

	// Activity is the audit-log collaborator (optional in tests).
	Activity *ActivityService
}

// RoomName derives the canonical room identifier for a community.
func RoomName(communityID uint64) string {
	return fmt.Sprintf("community_%d", communityID)
}

// publishRoom is a nil-safe wrapper around the injected callback.
func (s *Service) publishRoom(communityID uint64, event string, payload map[string]any) {
	if s.PublishRoom != nil {
		s.PublishRoom(RoomName(communityID), event, payload)
	}
}

func (s *Service) publishGlobal(event string, payload map[string]any) {
	if s.PublishGlobal != nil {
		s.PublishGlobal(event, payload)
	}
}
