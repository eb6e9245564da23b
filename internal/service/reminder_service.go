package service

import (
	"context"
	"fmt"
	"time"

	"gicare/internal/repository"
	"gicare/internal/schedule"
)

// Notification is one fire-and-forget user-visible alert. There is no
// acknowledgment channel and no delivery guarantee.
type Notification struct {
	Title string
	Body  string
}

// ReminderService reconciles wall-clock time against the medication catalog,
// the dose log, and the appointment list. It never writes to any store.
type ReminderService struct {
	logRepo *repository.MedLogRepository
	aptRepo *repository.AppointmentRepository
}

func NewReminderService(logRepo *repository.MedLogRepository, aptRepo *repository.AppointmentRepository) *ReminderService {
	return &ReminderService{logRepo: logRepo, aptRepo: aptRepo}
}

// DueNotifications computes every notification owed to the user at now.
// Dose reminders are suppressed solely by the existence of a taken log, so
// an unmarked dose fires again on the next matching tick. If several catalog
// medications share a time, each fires once.
func (s *ReminderService) DueNotifications(ctx context.Context, userID uint, now time.Time) ([]Notification, error) {
	currentTime := now.Format(schedule.ClockLayout)
	currentDate := now.Format(schedule.DateLayout)

	var due []Notification

	for _, med := range schedule.Catalog() {
		if !med.HasTime(currentTime) {
			continue
		}
		taken, err := s.logRepo.Exists(ctx, userID, med.ID, currentDate, currentTime)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		due = append(due, Notification{
			Title: fmt.Sprintf("Medication time: %s", med.Name),
			Body:  fmt.Sprintf("It is time to take %s (%s). Category: %s.", med.Name, currentTime, med.Category),
		})
	}

	apts, err := s.aptRepo.ListByDate(ctx, userID, currentDate)
	if err != nil {
		return nil, err
	}
	for _, apt := range apts {
		location := apt.Location
		if location == "" {
			location = "not specified"
		}
		if apt.Time == currentTime {
			due = append(due, Notification{
				Title: fmt.Sprintf("Appointment now: %s", apt.Title),
				Body:  fmt.Sprintf("Your appointment is now at %s. Location: %s.", apt.Time, location),
			})
		}
		// The advance reminder compares HH:mm only, gated on today's date,
		// so appointments shortly after midnight never get one.
		if before, ok := oneHourBefore(apt.Date, apt.Time); ok && before == currentTime {
			due = append(due, Notification{
				Title: fmt.Sprintf("Appointment reminder: %s", apt.Title),
				Body:  fmt.Sprintf("Your appointment is in 1 hour (%s). Location: %s.", apt.Time, location),
			})
		}
	}

	return due, nil
}

// oneHourBefore formats the appointment instant minus 60 minutes as HH:mm.
func oneHourBefore(date, timeStr string) (string, bool) {
	t, err := time.Parse(schedule.DateLayout+"T"+schedule.ClockLayout, date+"T"+timeStr)
	if err != nil {
		return "", false
	}
	return t.Add(-time.Hour).Format(schedule.ClockLayout), true
}
