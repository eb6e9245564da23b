package schedule

import (
	"fmt"
	"time"
)

// Layouts shared by every component that formats calendar dates and clock
// times. All persisted dates and times are plain strings in these layouts.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// WeekWindow returns the seven calendar dates of the Monday-through-Sunday
// week containing ref (YYYY-MM-DD). The math runs entirely on calendar
// dates, never on instants, so the window is stable across timezones and
// midnight boundaries. A Sunday reference is day 7 of the preceding window.
func WeekWindow(ref string) ([]string, error) {
	t, err := time.Parse(DateLayout, ref)
	if err != nil {
		return nil, fmt.Errorf("parse reference date %q: %w", ref, err)
	}

	// Monday=0 … Sunday=6.
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)

	days := make([]string, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i).Format(DateLayout)
	}
	return days, nil
}

// WeekBounds returns the first (Monday) and last (Sunday) date of the week
// window containing ref.
func WeekBounds(ref string) (string, string, error) {
	days, err := WeekWindow(ref)
	if err != nil {
		return "", "", err
	}
	return days[0], days[6], nil
}
