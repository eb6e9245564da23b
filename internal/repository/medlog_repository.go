package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"gicare/internal/model"
)

// MedLogRepository handles taken-dose records. At most one row exists per
// (user, medication, date, time) slot.
type MedLogRepository struct {
	db *gorm.DB
}

func NewMedLogRepository(db *gorm.DB) *MedLogRepository {
	return &MedLogRepository{db: db}
}

func (r *MedLogRepository) Create(ctx context.Context, logEntry *model.MedLog) error {
	if err := r.db.WithContext(ctx).Create(logEntry).Error; err != nil {
		return fmt.Errorf("create med log: %w", err)
	}
	return nil
}

// Find returns the log row for a dose slot, or gorm.ErrRecordNotFound.
func (r *MedLogRepository) Find(ctx context.Context, userID uint, scheduleID, date, timeStr string) (*model.MedLog, error) {
	var logEntry model.MedLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND med_schedule_id = ? AND date = ? AND time = ?", userID, scheduleID, date, timeStr).
		First(&logEntry).Error
	if err != nil {
		return nil, err
	}
	return &logEntry, nil
}

// Exists reports whether a taken log is present for the dose slot.
func (r *MedLogRepository) Exists(ctx context.Context, userID uint, scheduleID, date, timeStr string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MedLog{}).
		Where("user_id = ? AND med_schedule_id = ? AND date = ? AND time = ? AND taken = ?", userID, scheduleID, date, timeStr, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count med logs: %w", err)
	}
	return count > 0, nil
}

// DeleteSlot removes the log row for a dose slot. No-op if absent.
func (r *MedLogRepository) DeleteSlot(ctx context.Context, userID uint, scheduleID, date, timeStr string) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND med_schedule_id = ? AND date = ? AND time = ?", userID, scheduleID, date, timeStr).
		Delete(&model.MedLog{}).Error; err != nil {
		return fmt.Errorf("delete med log: %w", err)
	}
	return nil
}

// ListRange returns all logs with fromDate <= date <= toDate. Dates sort
// lexicographically in YYYY-MM-DD, so string comparison is correct.
func (r *MedLogRepository) ListRange(ctx context.Context, userID uint, fromDate, toDate string) ([]model.MedLog, error) {
	var logs []model.MedLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, fromDate, toDate).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
