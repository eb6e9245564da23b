package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment is a single upcoming visit, entered manually or created from
// free text by the extractor.
type Appointment struct {
	ID        uuid.UUID `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Title     string    `gorm:"not null"`
	Date      string    `gorm:"index;not null"` // YYYY-MM-DD
	Time      string    `gorm:"not null"`       // HH:mm
	Location  string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
