package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gicare/internal/model"
	"gicare/internal/repository"
	"gicare/internal/schedule"
)

// LogService owns dose-slot bookkeeping. A slot is taken iff a log row for
// (user, medication, date, time) exists; there is no stored boolean state
// beyond row existence.
type LogService struct {
	logRepo *repository.MedLogRepository
}

func NewLogService(logRepo *repository.MedLogRepository) *LogService {
	return &LogService{logRepo: logRepo}
}

// IsTaken reports whether the dose slot has a taken log.
func (s *LogService) IsTaken(ctx context.Context, user *model.User, scheduleID, date, timeStr string) (bool, error) {
	return s.logRepo.Exists(ctx, user.ID, scheduleID, date, timeStr)
}

// Toggle flips a dose slot: an existing log is removed (un-marked),
// otherwise a new taken log is created with TakenAt=now. Toggling twice in
// succession returns the store to its original state. Slot validity against
// the catalog is the caller's concern; only valid slots are ever rendered.
func (s *LogService) Toggle(ctx context.Context, user *model.User, scheduleID, date, timeStr string, now time.Time) (bool, error) {
	_, err := s.logRepo.Find(ctx, user.ID, scheduleID, date, timeStr)
	switch {
	case err == nil:
		if err := s.logRepo.DeleteSlot(ctx, user.ID, scheduleID, date, timeStr); err != nil {
			return false, err
		}
		return false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := model.MedLog{
			UserID:        user.ID,
			MedScheduleID: scheduleID,
			Date:          date,
			Time:          timeStr,
			Taken:         true,
			TakenAt:       now,
		}
		if err := s.logRepo.Create(ctx, &entry); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, fmt.Errorf("find med log: %w", err)
	}
}

// WeekGrid is the derived weekly view: the seven window dates plus a
// slot-to-taken lookup for everything logged inside the window.
type WeekGrid struct {
	Days  []string
	taken map[string]bool
}

// Taken reports the state of one dose slot in the grid.
func (g *WeekGrid) Taken(scheduleID, date, timeStr string) bool {
	return g.taken[slotKey(scheduleID, date, timeStr)]
}

// WeekGrid builds the Monday-through-Sunday grid containing refDate.
func (s *LogService) WeekGrid(ctx context.Context, user *model.User, refDate string) (*WeekGrid, error) {
	days, err := schedule.WeekWindow(refDate)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListRange(ctx, user.ID, days[0], days[6])
	if err != nil {
		return nil, err
	}

	grid := &WeekGrid{Days: days, taken: make(map[string]bool, len(logs))}
	for _, entry := range logs {
		if entry.Taken {
			grid.taken[slotKey(entry.MedScheduleID, entry.Date, entry.Time)] = true
		}
	}
	return grid, nil
}

func slotKey(scheduleID, date, timeStr string) string {
	return scheduleID + "|" + date + "|" + timeStr
}
