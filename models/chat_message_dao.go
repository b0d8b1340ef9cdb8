package models

import (
	"gorm.io/gorm"
)

// ChatMessageDAO wraps ChatMessage queries.
type ChatMessageDAO struct {
	db *gorm.DB
}

// NewChatMessageDAO creates a ChatMessageDAO instance.
func NewChatMessageDAO(db *gorm.DB) *ChatMessageDAO {
	return &ChatMessageDAO{db: db}
}

// Create inserts a chat message. tx lets callers run the insert inside an
// enclosing transaction; nil falls back to the DAO's handle.
func (dao *ChatMessageDAO) Create(tx *gorm.DB, msg *ChatMessage) error {
	if tx == nil {
		tx = dao.db
	}
	return tx.Create(msg).Error
}

// Recent returns the most recent `limit` messages of a community in
// ascending creation order. The query fetches descending for the LIMIT and
// the slice is reversed for display.
func (dao *ChatMessageDAO) Recent(communityID uint64, limit int) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := dao.db.Where("community_id = ?", communityID).
		Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// SetModerated flips the moderation flag, the only mutation a chat message
// ever sees.
func (dao *ChatMessageDAO) SetModerated(id uint64, moderated bool) error {
	return dao.db.Model(&ChatMessage{}).Where("id = ?", id).Update("is_moderated", moderated).Error
}
