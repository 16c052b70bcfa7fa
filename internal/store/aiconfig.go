package store

import (
	"context"
	"errors"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"gorm.io/gorm"
)

// AIConfigStore persists AI completion configurations and their usage
// counters.
type AIConfigStore struct {
	db *gorm.DB
}

func NewAIConfigStore(db *gorm.DB) *AIConfigStore {
	return &AIConfigStore{db: db}
}

// FindByFanpage returns the oldest config whose applicable_fanpages set
// contains pageID, or (nil, nil) when none exists.
func (s *AIConfigStore) FindByFanpage(ctx context.Context, pageID string) (*models.AIConfig, error) {
	return s.firstMatching(ctx, "applicable_fanpages LIKE ?", `%"`+pageID+`"%`)
}

// FindByScenario returns the oldest config whose applicable_scenarios set
// contains scenarioID, or (nil, nil) when none exists.
func (s *AIConfigStore) FindByScenario(ctx context.Context, scenarioID string) (*models.AIConfig, error) {
	return s.firstMatching(ctx, "applicable_scenarios LIKE ?", `%"`+scenarioID+`"%`)
}

// FindDefault returns the single default config, or (nil, nil) when none is
// marked default.
func (s *AIConfigStore) FindDefault(ctx context.Context) (*models.AIConfig, error) {
	return s.firstMatching(ctx, "is_default = ?", true)
}

func (s *AIConfigStore) firstMatching(ctx context.Context, query string, arg interface{}) (*models.AIConfig, error) {
	var cfg models.AIConfig
	err := s.db.WithContext(ctx).Where(query, arg).Order("created_at ASC").First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RecordUsage updates the usage counters of a config with atomic increments.
// Called after every completion attempt, successful or not.
func (s *AIConfigStore) RecordUsage(ctx context.Context, id uint, tokensUsed int, success bool) error {
	updates := map[string]interface{}{
		"total_requests":    gorm.Expr("total_requests + 1"),
		"total_tokens_used": gorm.Expr("total_tokens_used + ?", tokensUsed),
		"last_used_at":      time.Now(),
	}
	if success {
		updates["successful_responses"] = gorm.Expr("successful_responses + 1")
	} else {
		updates["failed_responses"] = gorm.Expr("failed_responses + 1")
	}
	return s.db.WithContext(ctx).Model(&models.AIConfig{}).Where("id = ?", id).Updates(updates).Error
}

// SetDefault marks one config as the default, clearing any previous default in
// the same transaction so at most one default exists at any time.
func (s *AIConfigStore) SetDefault(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AIConfig{}).
			Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&models.AIConfig{}).Where("id = ?", id).Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (s *AIConfigStore) ByID(ctx context.Context, id uint) (*models.AIConfig, error) {
	var cfg models.AIConfig
	err := s.db.WithContext(ctx).First(&cfg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *AIConfigStore) List(ctx context.Context) ([]models.AIConfig, error) {
	var cfgs []models.AIConfig
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&cfgs).Error
	return cfgs, err
}

func (s *AIConfigStore) Create(ctx context.Context, cfg *models.AIConfig) error {
	return s.db.WithContext(ctx).Create(cfg).Error
}

func (s *AIConfigStore) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.AIConfig{}).Where("id = ?", id).Updates(fields).Error
}

func (s *AIConfigStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.AIConfig{}, id).Error
}
