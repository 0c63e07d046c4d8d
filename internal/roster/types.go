package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var ErrInvalidWeekday = errors.New("invalid weekday")

// Weekday enumerates the days of the week, Monday first, since all
// availability is keyed to a Monday-to-Sunday playing week
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Week lists the weekdays in roster order
var Week = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayNames = map[Weekday]string{
	Monday:    "monday",
	Tuesday:   "tuesday",
	Wednesday: "wednesday",
	Thursday:  "thursday",
	Friday:    "friday",
	Saturday:  "saturday",
	Sunday:    "sunday",
}

func (day Weekday) String() string {
	return weekdayNames[day]
}

// Title returns the weekday name capitalised for display
func (day Weekday) Title() string {
	name := weekdayNames[day]
	return strings.ToUpper(name[:1]) + name[1:]
}

// Time converts to the standard library weekday (Sunday = 0)
func (day Weekday) Time() time.Weekday {
	return time.Weekday((int(day) + 1) % 7)
}

// FromTime converts from the standard library weekday
func FromTime(day time.Weekday) Weekday {
	return Weekday((int(day) + 6) % 7)
}

// ParseWeekday accepts a full weekday name or any prefix of one,
// like "wed" or even "w"
func ParseWeekday(raw string) (Weekday, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidWeekday)
	}
	for _, day := range Week {
		if strings.HasPrefix(weekdayNames[day], cleaned) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, raw)
}

// ParseDays parses a comma separated list of weekdays, like "wed, thu, sat".
// Unknown segments make the whole input invalid
func ParseDays(raw string) ([]Weekday, error) {
	days := []Weekday{}
	for _, segment := range strings.Split(raw, ",") {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		day, err := ParseWeekday(segment)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no days in %q", ErrInvalidWeekday, raw)
	}
	return normalizeDays(days), nil
}

// normalizeDays sorts and deduplicates
func normalizeDays(days []Weekday) []Weekday {
	seen := map[Weekday]struct{}{}
	result := []Weekday{}
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		result = append(result, day)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Team tags a player as part of one of the two rosters.
// The empty value means the player has not picked a side
type Team string

const (
	TeamNone Team = ""
	TeamA    Team = "A"
	TeamB    Team = "B"
)

// ParseTeam accepts "a"/"b" in any case; anything else maps to TeamNone
func ParseTeam(raw string) Team {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "A":
		return TeamA
	case "B":
		return TeamB
	}
	return TeamNone
}

// Record is one player's availability for the current week
type Record struct {
	Player string    `json:"-"`
	Name   string    `json:"display_name"`
	Team   Team      `json:"team,omitempty"`
	Days   []Weekday `json:"days"`
}

// HasDay reports whether the record marks the player available on the given day
func (record Record) HasDay(day Weekday) bool {
	for _, d := range record.Days {
		if d == day {
			return true
		}
	}
	return false
}

// MarshalText stores weekdays by name so the persisted files stay readable
func (day Weekday) MarshalText() ([]byte, error) {
	return []byte(day.String()), nil
}

func (day *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*day = parsed
	return nil
}
