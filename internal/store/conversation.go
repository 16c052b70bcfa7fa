package store

import (
	"context"
	"errors"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationStore persists conversations keyed by (page_id, psid) with a
// durable uuid id.
type ConversationStore struct {
	db *gorm.DB
}

func NewConversationStore(db *gorm.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Upsert finds the conversation for (pageID, psid), creating it on first
// contact.
func (s *ConversationStore) Upsert(ctx context.Context, pageID, psid string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).
		Where("page_id = ? AND ps_id = ?", pageID, psid).
		First(&conv).Error
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = models.Conversation{
		ID:     uuid.NewString(),
		PageID: pageID,
		PSID:   psid,
		Status: models.ConversationOpen,
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *ConversationStore) ByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *ConversationStore) UpdateLastMessage(ctx context.Context, id, text string) error {
	return s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_message", text).Error
}

func (s *ConversationStore) UpdateStatus(ctx context.Context, id, status string) error {
	return s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (s *ConversationStore) ListByPage(ctx context.Context, pageID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	q := s.db.WithContext(ctx)
	if pageID != "" {
		q = q.Where("page_id = ?", pageID)
	}
	err := q.Order("last_updated DESC").Find(&convs).Error
	return convs, err
}
