package service

import (
	"context"

	"gicare/internal/model"
	"gicare/internal/repository"
)

// defaultInventory is the stock list seeded for every new user, aligned with
// the medication catalog.
var defaultInventory = []model.InventoryItem{
	{Name: "Ursodiol 300mg", CurrentQuantity: 30, MinThreshold: 10, Unit: "pills"},
	{Name: "SAMe 200mg", CurrentQuantity: 20, MinThreshold: 7, Unit: "pills"},
	{Name: "Levetiracetam 500mg", CurrentQuantity: 60, MinThreshold: 14, Unit: "pills"},
	{Name: "Phenobarbital 100mg", CurrentQuantity: 30, MinThreshold: 10, Unit: "pills"},
	{Name: "Syringes", CurrentQuantity: 12, MinThreshold: 4, Unit: "units"},
}

// InventoryService wraps stock adjustments and the derived low-stock view.
type InventoryService struct {
	repo *repository.InventoryRepository
}

func NewInventoryService(repo *repository.InventoryRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

// EnsureSeeded inserts the default stock list for a user that has none yet.
func (s *InventoryService) EnsureSeeded(ctx context.Context, user *model.User) error {
	count, err := s.repo.CountByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := make([]model.InventoryItem, len(defaultInventory))
	copy(items, defaultInventory)
	for i := range items {
		items[i].UserID = user.ID
	}
	return s.repo.CreateAll(ctx, items)
}

func (s *InventoryService) List(ctx context.Context, user *model.User) ([]model.InventoryItem, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// Adjust changes an item's quantity by delta, silently clamped at zero.
// Adjustment is always legal; there is no error path for the clamp.
func (s *InventoryService) Adjust(ctx context.Context, user *model.User, itemID uint, delta int) (*model.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, user.ID, itemID)
	if err != nil {
		return nil, err
	}

	item.CurrentQuantity += delta
	if item.CurrentQuantity < 0 {
		item.CurrentQuantity = 0
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// LowStock returns every item at or below its threshold. Recomputed on each
// call, never stored.
func (s *InventoryService) LowStock(ctx context.Context, user *model.User) ([]model.InventoryItem, error) {
	items, err := s.repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	var low []model.InventoryItem
	for _, item := range items {
		if item.LowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}
