package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gicare/internal/extractor"
	"gicare/internal/model"
	"gicare/internal/repository"
	"gicare/internal/schedule"
)

// AppointmentInput represents data required to create an appointment by hand.
type AppointmentInput struct {
	Title    string
	Date     string // YYYY-MM-DD
	Time     string // HH:mm
	Location string
	Notes    string
}

// AppointmentService wraps appointment CRUD plus the AI-assisted creation
// flow. The extractor may be nil when no API key is configured; free-text
// entry then degrades to the same failure the user sees for a bad parse.
type AppointmentService struct {
	repo      *repository.AppointmentRepository
	extractor extractor.Extractor
}

func NewAppointmentService(repo *repository.AppointmentRepository, ext extractor.Extractor) *AppointmentService {
	return &AppointmentService{repo: repo, extractor: ext}
}

// Add validates and stores a manually entered appointment.
func (s *AppointmentService) Add(ctx context.Context, user *model.User, input AppointmentInput) (*model.Appointment, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if _, err := time.Parse(schedule.DateLayout, input.Date); err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", input.Date)
	}
	if _, err := time.Parse(schedule.ClockLayout, input.Time); err != nil {
		return nil, fmt.Errorf("invalid time %q, expected HH:MM", input.Time)
	}

	apt := model.Appointment{
		UserID:   user.ID,
		Title:    input.Title,
		Date:     input.Date,
		Time:     input.Time,
		Location: strings.TrimSpace(input.Location),
		Notes:    strings.TrimSpace(input.Notes),
	}
	if err := s.repo.Create(ctx, &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}

// Remove deletes an appointment. No-op if it does not exist.
func (s *AppointmentService) Remove(ctx context.Context, user *model.User, id uuid.UUID) error {
	return s.repo.Delete(ctx, user.ID, id)
}

// Week returns the appointments inside the Monday-through-Sunday window
// containing refDate, ascending by (date, time).
func (s *AppointmentService) Week(ctx context.Context, user *model.User, refDate string) ([]model.Appointment, error) {
	monday, sunday, err := schedule.WeekBounds(refDate)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRange(ctx, user.ID, monday, sunday)
}

// AddFromText runs the extractor over free user text and stores the result.
// Every failure collapses to extractor.ErrUnparsable and leaves the store
// unmodified; a fresh identifier is always minted for the stored entity.
func (s *AppointmentService) AddFromText(ctx context.Context, user *model.User, text string, now time.Time) (*model.Appointment, error) {
	if s.extractor == nil {
		return nil, fmt.Errorf("%w: extractor not configured", extractor.ErrUnparsable)
	}

	parsed, err := s.extractor.Extract(ctx, text, now.Format(schedule.DateLayout))
	if err != nil {
		return nil, err
	}

	apt := model.Appointment{
		UserID:   user.ID,
		Title:    parsed.Title,
		Date:     parsed.Date,
		Time:     parsed.Time,
		Location: parsed.Location,
	}
	if err := s.repo.Create(ctx, &apt); err != nil {
		return nil, err
	}
	return &apt, nil
}
