package store

import (
	"context"
	"errors"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"gorm.io/gorm"
)

// FanpageStore persists fanpages. Lookups return (nil, nil) when no row exists.
type FanpageStore struct {
	db *gorm.DB
}

func NewFanpageStore(db *gorm.DB) *FanpageStore {
	return &FanpageStore{db: db}
}

func (s *FanpageStore) ByPageID(ctx context.Context, pageID string) (*models.Fanpage, error) {
	var page models.Fanpage
	err := s.db.WithContext(ctx).Where("page_id = ?", pageID).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// IncrementMonthlySent bumps the monthly sent counter with a single atomic
// UPDATE so concurrent dispatches never lose increments.
func (s *FanpageStore) IncrementMonthlySent(ctx context.Context, pageID string) error {
	return s.db.WithContext(ctx).Model(&models.Fanpage{}).
		Where("page_id = ?", pageID).
		UpdateColumn("messages_sent_this_month", gorm.Expr("messages_sent_this_month + 1")).Error
}

// ResetMonthlySent zeroes the counter, used by the monthly reset endpoint.
func (s *FanpageStore) ResetMonthlySent(ctx context.Context, pageID string) error {
	return s.db.WithContext(ctx).Model(&models.Fanpage{}).
		Where("page_id = ?", pageID).
		UpdateColumn("messages_sent_this_month", 0).Error
}

func (s *FanpageStore) List(ctx context.Context) ([]models.Fanpage, error) {
	var pages []models.Fanpage
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&pages).Error
	return pages, err
}

func (s *FanpageStore) Create(ctx context.Context, page *models.Fanpage) error {
	return s.db.WithContext(ctx).Create(page).Error
}

func (s *FanpageStore) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Fanpage{}).Where("id = ?", id).Updates(fields).Error
}

func (s *FanpageStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Fanpage{}, id).Error
}
