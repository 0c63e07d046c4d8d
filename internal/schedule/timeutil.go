package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

var (
	ErrInvalidTimeFormat = errors.New("invalid time format")
	ErrInvalidTimezone   = errors.New("invalid timezone")
)

// TimeOfDay is a wall-clock time with no date or zone attached
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Spellings accepted for a time of day, 24-hour and 12-hour with AM/PM
var timeLayouts = []string{"15:04", "3:04 PM", "3 PM", "3:04PM", "3PM"}

// ParseTimeOfDay parses a time like "19:00", "7:00 PM" or "7 PM"
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, cleaned)
		if err == nil {
			return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
}

// AddMinutes shifts the time of day, wrapping around midnight in either direction
func (tod TimeOfDay) AddMinutes(minutes int) TimeOfDay {
	total := tod.Hour*60 + tod.Minute + minutes
	total %= 24 * 60
	if total < 0 {
		total += 24 * 60
	}
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

func (tod TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", tod.Hour, tod.Minute)
}

// LoadZone resolves an IANA timezone name
func LoadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// NextOccurrence returns the soonest instant at or after now that falls on
// the given weekday at the given wall-clock time in the given zone. If that
// slot has already passed today, the result is next week's slot. Building
// the candidate with time.Date keeps the arithmetic correct across DST
// transitions between now and the target
func NextOccurrence(day roster.Weekday, tod TimeOfDay, loc *time.Location, now time.Time) time.Time {
	local := now.In(loc)
	ahead := (int(day.Time()) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day()+ahead, tod.Hour, tod.Minute, 0, 0, loc)
	if candidate.Before(now) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+ahead+7, tod.Hour, tod.Minute, 0, 0, loc)
	}
	return candidate
}

// DayStart returns the next local midnight strictly after now
func DayStart(loc *time.Location, now time.Time) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// LocalDate is a calendar-day key like "2025-03-09", used to make sure a
// concern fires at most once per community-local day no matter how often
// it gets polled
func LocalDate(loc *time.Location, instant time.Time) string {
	return instant.In(loc).Format("2006-01-02")
}

// FormatSlot renders a scrim slot for display, like "7:00 PM EDT".
// Falls back to the raw strings if the slot does not parse
func FormatSlot(slot roster.ScrimSlot, now time.Time) string {
	tod, err := ParseTimeOfDay(slot.Time)
	if err != nil {
		return slot.Time
	}
	loc, err := LoadZone(slot.Timezone)
	if err != nil {
		return fmt.Sprintf("%s %s", slot.Time, slot.Timezone)
	}
	local := now.In(loc)
	at := time.Date(local.Year(), local.Month(), local.Day(), tod.Hour, tod.Minute, 0, 0, loc)
	return at.Format("3:04 PM MST")
}
