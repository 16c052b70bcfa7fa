package store

import (
	"context"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookLogStore records raw inbound platform events.
type WebhookLogStore struct {
	db *gorm.DB
}

func NewWebhookLogStore(db *gorm.DB) *WebhookLogStore {
	return &WebhookLogStore{db: db}
}

func (s *WebhookLogStore) Record(ctx context.Context, pageID, psid, eventType, payload string) error {
	entry := models.WebhookLog{
		ID:        uuid.NewString(),
		PageID:    pageID,
		PSID:      psid,
		EventType: eventType,
		Payload:   payload,
	}
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *WebhookLogStore) Recent(ctx context.Context, limit int) ([]models.WebhookLog, error) {
	var logs []models.WebhookLog
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
