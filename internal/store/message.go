package store

import (
	"context"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"gorm.io/gorm"
)

// MessageStore is the append-only record of conversation turns.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) Create(ctx context.Context, msg *models.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

// Recent returns up to limit messages of a conversation, newest first.
func (s *MessageStore) Recent(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}

// ListByConversation returns the full history in chronological order, for the
// agent console.
func (s *MessageStore) ListByConversation(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}
