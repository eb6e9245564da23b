package schedule_test

import (
	"testing"

	"gicare/internal/schedule"
)

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		ref        string
		wantMonday string
		wantSunday string
	}{
		// Plain Wednesday.
		{"2024-05-15", "2024-05-13", "2024-05-19"},
		// Monday maps onto itself.
		{"2024-01-01", "2024-01-01", "2024-01-07"},
		// Sunday is day 7 of the previous window, not the start of a new one.
		{"2024-01-07", "2024-01-01", "2024-01-07"},
		// Month boundary: Friday 2024-05-31 sits in a window ending in June.
		{"2024-05-31", "2024-05-27", "2024-06-02"},
		// Year boundary: Tuesday 2024-12-31 sits in a window ending in 2025.
		{"2024-12-31", "2024-12-30", "2025-01-05"},
	}
	for _, tt := range tests {
		days, err := schedule.WeekWindow(tt.ref)
		if err != nil {
			t.Fatalf("WeekWindow(%q): %v", tt.ref, err)
		}
		if len(days) != 7 {
			t.Fatalf("WeekWindow(%q) returned %d days, want 7", tt.ref, len(days))
		}
		if days[0] != tt.wantMonday {
			t.Errorf("WeekWindow(%q)[0] = %q, want %q", tt.ref, days[0], tt.wantMonday)
		}
		if days[6] != tt.wantSunday {
			t.Errorf("WeekWindow(%q)[6] = %q, want %q", tt.ref, days[6], tt.wantSunday)
		}
	}
}

func TestWeekWindowContainsReference(t *testing.T) {
	ref := "2024-02-29" // leap-day Thursday
	days, err := schedule.WeekWindow(ref)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, d := range days {
		if d == ref {
			found = true
		}
	}
	if !found {
		t.Errorf("window %v does not contain reference date %q", days, ref)
	}
}

func TestWeekWindowBadDate(t *testing.T) {
	if _, err := schedule.WeekWindow("31/05/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestItemByID(t *testing.T) {
	item, ok := schedule.ItemByID("med-ursodiol")
	if !ok {
		t.Fatal("expected catalog to contain med-ursodiol")
	}
	if !item.HasTime("08:00") {
		t.Errorf("expected 08:00 in times %v", item.Times)
	}
	if item.HasTime("09:30") {
		t.Error("09:30 is not a dose time")
	}
	if _, ok := schedule.ItemByID("med-nope"); ok {
		t.Error("unknown id should not resolve")
	}
}
