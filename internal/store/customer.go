package store

import (
	"context"
	"errors"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"

	"gorm.io/gorm"
)

// CustomerStore persists customers keyed by (facebook_id, fanpage_id).
type CustomerStore struct {
	db *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) ByExternalID(ctx context.Context, psid, pageID string) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.WithContext(ctx).
		Where("facebook_id = ? AND fanpage_id = ?", psid, pageID).
		First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Upsert creates the customer on first contact, keeping an existing row as is.
func (s *CustomerStore) Upsert(ctx context.Context, psid, pageID, name string) (*models.Customer, error) {
	existing, err := s.ByExternalID(ctx, psid, pageID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Name == "" && name != "" {
			existing.Name = name
			if err := s.db.WithContext(ctx).Model(existing).Update("name", name).Error; err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	customer := models.Customer{
		FacebookID: psid,
		FanpageID:  pageID,
		Name:       name,
		Tags:       "[]",
		CustomVars: "{}",
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// MergeTags unions the given tags into the customer's tag set. A tag already
// present is not duplicated.
func (s *CustomerStore) MergeTags(ctx context.Context, psid, pageID string, tags []string) error {
	customer, err := s.ByExternalID(ctx, psid, pageID)
	if err != nil {
		return err
	}
	if customer == nil {
		return gorm.ErrRecordNotFound
	}

	current := customer.TagList()
	seen := make(map[string]bool, len(current))
	for _, t := range current {
		seen[t] = true
	}
	for _, t := range tags {
		if t != "" && !seen[t] {
			current = append(current, t)
			seen[t] = true
		}
	}

	customer.SetTagList(current)
	return s.db.WithContext(ctx).Model(customer).Update("tags", customer.Tags).Error
}

// MergeVariables merges vars into the customer's custom-variable map with
// first-write-wins semantics: an existing key keeps its stored value.
func (s *CustomerStore) MergeVariables(ctx context.Context, psid, pageID string, vars map[string]string) error {
	customer, err := s.ByExternalID(ctx, psid, pageID)
	if err != nil {
		return err
	}
	if customer == nil {
		return gorm.ErrRecordNotFound
	}

	current := customer.Variables()
	for k, v := range vars {
		if _, exists := current[k]; !exists {
			current[k] = v
		}
	}

	customer.SetVariables(current)
	return s.db.WithContext(ctx).Model(customer).Update("custom_vars", customer.CustomVars).Error
}

func (s *CustomerStore) ListByPage(ctx context.Context, pageID string) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.WithContext(ctx).Where("fanpage_id = ?", pageID).
		Order("updated_at DESC").Find(&customers).Error
	return customers, err
}
