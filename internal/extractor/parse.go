package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gicare/internal/schedule"
)

// ErrUnparsable covers every extraction failure the caller can see: the
// service being unreachable, a malformed payload, or missing fields. Callers
// surface it as a single "could not understand" condition.
var ErrUnparsable = errors.New("could not extract appointment fields")

// ParsedAppointment is the transient extraction result. It is validated and
// copied into a fresh model.Appointment, never persisted directly.
type ParsedAppointment struct {
	Title    string `json:"title"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:mm, 24-hour
	Location string `json:"location"`
}

// Decode turns raw model output into a validated ParsedAppointment. The
// payload may arrive wrapped in markdown fences or prose; anything outside
// the outermost {…} is discarded before decoding. The output is untrusted:
// any missing or ill-formed field is a failure, never a partial success.
func Decode(raw string) (ParsedAppointment, error) {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return ParsedAppointment{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	if !json.Valid([]byte(jsonStr)) {
		return ParsedAppointment{}, fmt.Errorf("%w: response is not valid JSON", ErrUnparsable)
	}

	var parsed ParsedAppointment
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return ParsedAppointment{}, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Date = strings.TrimSpace(parsed.Date)
	parsed.Time = strings.TrimSpace(parsed.Time)
	parsed.Location = strings.TrimSpace(parsed.Location)

	if err := parsed.validate(); err != nil {
		return ParsedAppointment{}, err
	}
	return parsed, nil
}

func (p ParsedAppointment) validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: empty title", ErrUnparsable)
	case p.Date == "":
		return fmt.Errorf("%w: empty date", ErrUnparsable)
	case p.Time == "":
		return fmt.Errorf("%w: empty time", ErrUnparsable)
	case p.Location == "":
		return fmt.Errorf("%w: empty location", ErrUnparsable)
	}
	if _, err := time.Parse(schedule.DateLayout, p.Date); err != nil {
		return fmt.Errorf("%w: bad date %q", ErrUnparsable, p.Date)
	}
	if _, err := time.Parse(schedule.ClockLayout, p.Time); err != nil {
		return fmt.Errorf("%w: bad time %q", ErrUnparsable, p.Time)
	}
	return nil
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}
