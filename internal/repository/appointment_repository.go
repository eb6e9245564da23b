package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gicare/internal/model"
)

// AppointmentRepository handles upcoming visits.
type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	if err := r.db.WithContext(ctx).Create(apt).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Delete removes an appointment for the given user. No-op if absent.
func (r *AppointmentRepository) Delete(ctx context.Context, userID uint, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Appointment{}).Error; err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, userID uint, id uuid.UUID) (*model.Appointment, error) {
	var apt model.Appointment
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&apt).Error; err != nil {
		return nil, err
	}
	return &apt, nil
}

// ListRange returns appointments with fromDate <= date <= toDate, sorted
// ascending by the (date, time) composite key.
func (r *AppointmentRepository) ListRange(ctx context.Context, userID uint, fromDate, toDate string) ([]model.Appointment, error) {
	var apts []model.Appointment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, fromDate, toDate).
		Order("date ASC, time ASC").
		Find(&apts).Error; err != nil {
		return nil, err
	}
	return apts, nil
}

func (r *AppointmentRepository) ListByDate(ctx context.Context, userID uint, date string) ([]model.Appointment, error) {
	var apts []model.Appointment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("time ASC").
		Find(&apts).Error; err != nil {
		return nil, err
	}
	return apts, nil
}
