package store

import (
	"context"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"gorm.io/gorm"
)

// ScriptStore persists scripts and sub-scripts. Candidate queries return rows
// pre-sorted by descending priority with insertion order breaking ties, which
// the matcher relies on for its first-positive-confidence scan.
type ScriptStore struct {
	db *gorm.DB
}

func NewScriptStore(db *gorm.DB) *ScriptStore {
	return &ScriptStore{db: db}
}

// ActiveSubScripts returns the active sub-scripts for a scenario, highest
// priority first. An empty scenarioID returns sub-scripts of every scenario.
func (s *ScriptStore) ActiveSubScripts(ctx context.Context, scenarioID string) ([]models.SubScript, error) {
	q := s.db.WithContext(ctx).Where("status = ?", models.StatusActive)
	if scenarioID != "" {
		q = q.Where("scenario_id = ?", scenarioID)
	}
	var subs []models.SubScript
	err := q.Order("priority DESC, id ASC").Find(&subs).Error
	return subs, err
}

// ActiveScripts returns the active scripts for a group, highest priority first.
func (s *ScriptStore) ActiveScripts(ctx context.Context, groupID string) ([]models.Script, error) {
	q := s.db.WithContext(ctx).Where("status = ?", models.StatusActive)
	if groupID != "" {
		q = q.Where("group_id = ?", groupID)
	}
	var scripts []models.Script
	err := q.Order("priority DESC, id ASC").Find(&scripts).Error
	return scripts, err
}

func (s *ScriptStore) ListScripts(ctx context.Context, groupID string) ([]models.Script, error) {
	q := s.db.WithContext(ctx)
	if groupID != "" {
		q = q.Where("group_id = ?", groupID)
	}
	var scripts []models.Script
	err := q.Order("priority DESC, created_at DESC").Find(&scripts).Error
	return scripts, err
}

func (s *ScriptStore) ListSubScripts(ctx context.Context, scenarioID string) ([]models.SubScript, error) {
	q := s.db.WithContext(ctx)
	if scenarioID != "" {
		q = q.Where("scenario_id = ?", scenarioID)
	}
	var subs []models.SubScript
	err := q.Order("priority DESC, created_at DESC").Find(&subs).Error
	return subs, err
}

func (s *ScriptStore) CreateScript(ctx context.Context, script *models.Script) error {
	return s.db.WithContext(ctx).Create(script).Error
}

func (s *ScriptStore) UpdateScript(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.Script{}).Where("id = ?", id).Updates(fields).Error
}

func (s *ScriptStore) DeleteScript(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Script{}, id).Error
}

func (s *ScriptStore) CreateSubScript(ctx context.Context, sub *models.SubScript) error {
	return s.db.WithContext(ctx).Create(sub).Error
}

func (s *ScriptStore) UpdateSubScript(ctx context.Context, id uint, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&models.SubScript{}).Where("id = ?", id).Updates(fields).Error
}

func (s *ScriptStore) DeleteSubScript(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.SubScript{}, id).Error
}
