package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"gicare/internal/model"
)

// InventoryRepository handles stock items.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *InventoryRepository) FindByID(ctx context.Context, userID, itemID uint) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) Save(ctx context.Context, item *model.InventoryItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("save inventory item: %w", err)
	}
	return nil
}

func (r *InventoryRepository) CreateAll(ctx context.Context, items []model.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("create inventory items: %w", err)
	}
	return nil
}

func (r *InventoryRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.InventoryItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count inventory items: %w", err)
	}
	return count, nil
}
