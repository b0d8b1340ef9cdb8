package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/IsraelDcoder/Dlcf-library/models"
	"gorm.io/gorm"
)

// Message bodies above this length are rejected before touching the store.
const maxChatMessageLen = 2000

// ChatService persists community chat messages. It owns the mandatory send
// ordering: membership check -> mute check -> persist. Broadcasting is the
// caller's job and must follow a successful persist.
type ChatService struct {
	*Service
	messageDAO *models.ChatMessageDAO
}

func NewChatService(s *Service) *ChatService {
	return &ChatService{Service: s, messageDAO: models.NewChatMessageDAO(s.DB)}
}

// SaveMessage validates and persists one chat message. The membership check
// and the insert share a transaction so a concurrent removal cannot slip a
// message past the gate; the mute check sits between them per the send
// protocol. ErrMuted carries no expiry -- callers needing the expiry for the
// private `muted` reply ask the mute store directly.
func (s *ChatService) SaveMessage(ctx context.Context, communityID, authorID uint64, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", ErrValidation)
	}
	if len(text) > maxChatMessageLen {
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrValidation, maxChatMessageLen)
	}

	msg := &models.ChatMessage{
		CommunityID: communityID,
		AuthorID:    authorID,
		Message:     text,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Membership{}).
			Where("user_id = ? AND community_id = ?", authorID, communityID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotMember
		}

		muted, _, err := s.Mutes.IsMuted(ctx, communityID, authorID)
		if err != nil {
			return err
		}
		if muted {
			return ErrMuted
		}

		return s.messageDAO.Create(tx, msg)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Recent returns the latest `limit` messages in display (ascending) order.
func (s *ChatService) Recent(communityID uint64, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.messageDAO.Recent(communityID, limit)
}
