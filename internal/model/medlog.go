package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MedLog records one taken dose. The existence of a row is the source of
// truth: un-marking a dose deletes the row instead of flipping Taken, so a
// persisted log always has Taken=true.
type MedLog struct {
	ID            uuid.UUID `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_dose_slot"`
	MedScheduleID string    `gorm:"not null;uniqueIndex:idx_dose_slot"`
	Date          string    `gorm:"not null;uniqueIndex:idx_dose_slot"` // YYYY-MM-DD
	Time          string    `gorm:"not null;uniqueIndex:idx_dose_slot"` // HH:mm
	Taken         bool      `gorm:"default:true"`
	TakenAt       time.Time
	CreatedAt     time.Time
}

func (l *MedLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
