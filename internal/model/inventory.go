package model

import "time"

// InventoryItem tracks the remaining stock of one medication-like item.
type InventoryItem struct {
	ID              uint   `gorm:"primaryKey"`
	UserID          uint   `gorm:"not null;uniqueIndex:idx_user_item_name"`
	Name            string `gorm:"not null;uniqueIndex:idx_user_item_name"`
	CurrentQuantity int
	MinThreshold    int
	Unit            string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LowStock reports whether the item is at or below its restock threshold.
// Always derived, never stored.
func (i InventoryItem) LowStock() bool {
	return i.CurrentQuantity <= i.MinThreshold
}
