package roster

// Settings keeps the per-community configuration exactly as the community
// set it. Fields left empty fall back to the documented defaults at read
// time, so a change to the defaults never rewrites what a community chose
type Settings struct {
	AnnouncementChannel string                 `json:"announcement_channel_id,omitempty"`
	PingRole            string                 `json:"ping_role_id,omitempty"`
	AvailableRole       string                 `json:"available_role_id,omitempty"`
	TeamARole           string                 `json:"team_a_role_id,omitempty"`
	TeamBRole           string                 `json:"team_b_role_id,omitempty"`
	ScrimTimes          map[Weekday]ScrimSlot  `json:"scrim_times,omitempty"`
	PremierWindows      map[Weekday]string     `json:"premier_windows,omitempty"`
	AutoReset           *ResetRule             `json:"auto_reset,omitempty"`
}

// ScrimSlot is a start time for scrims on one weekday.
// Time is one of the accepted time-of-day spellings ("19:00", "7:00 PM");
// Timezone is an IANA name. Both are validated before they are stored
type ScrimSlot struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone,omitempty"`
}

// ResetRule says when the weekly availability wipe happens, community-local
type ResetRule struct {
	Day  Weekday `json:"day"`
	Hour int     `json:"hour"`
}

// Defaults are the process-level fallbacks applied when a community has not
// configured a value. They come from the environment at startup and are
// validated there, so readers can trust the time and timezone strings
type Defaults struct {
	AnnouncementChannel string
	AvailableRole       string
	TeamARole           string
	TeamBRole           string
	ScrimTime           string
	Timezone            string
	Reset               *ResetRule
}

// Documented premier windows: Wed/Thu/Sun early slot, Fri/Sat late slot,
// nothing on Monday and Tuesday
var defaultPremierWindows = map[Weekday]string{
	Wednesday: "7–8 PM ET",
	Thursday:  "7–8 PM ET",
	Friday:    "8–9 PM ET",
	Saturday:  "8–9 PM ET",
	Sunday:    "7–8 PM ET",
}

const (
	fallbackScrimTime = "7:00 PM"
	fallbackTimezone  = "America/New_York"
)

// Resolved is a settings view with every default already applied.
// Readers never have to special-case an unset field
type Resolved struct {
	settings Settings
	defaults Defaults
}

func (r Resolved) AnnouncementChannel() string {
	if r.settings.AnnouncementChannel != "" {
		return r.settings.AnnouncementChannel
	}
	return r.defaults.AnnouncementChannel
}

func (r Resolved) PingRole() string {
	return r.settings.PingRole
}

func (r Resolved) AvailableRole() string {
	if r.settings.AvailableRole != "" {
		return r.settings.AvailableRole
	}
	return r.defaults.AvailableRole
}

func (r Resolved) TeamRole(team Team) string {
	switch team {
	case TeamA:
		if r.settings.TeamARole != "" {
			return r.settings.TeamARole
		}
		return r.defaults.TeamARole
	case TeamB:
		if r.settings.TeamBRole != "" {
			return r.settings.TeamBRole
		}
		return r.defaults.TeamBRole
	}
	return ""
}

// ScrimSlotFor returns the scrim start for a weekday, either the community
// override for that day or the default time in the default timezone
func (r Resolved) ScrimSlotFor(day Weekday) ScrimSlot {
	if slot, ok := r.settings.ScrimTimes[day]; ok {
		if slot.Timezone == "" {
			slot.Timezone = r.timezone()
		}
		return slot
	}
	scrimTime := r.defaults.ScrimTime
	if scrimTime == "" {
		scrimTime = fallbackScrimTime
	}
	return ScrimSlot{Time: scrimTime, Timezone: r.timezone()}
}

// PremierWindowFor returns the display window for a weekday.
// An empty string means there is no premier play that day
func (r Resolved) PremierWindowFor(day Weekday) string {
	if window, ok := r.settings.PremierWindows[day]; ok {
		return window
	}
	return defaultPremierWindows[day]
}

func (r Resolved) AutoReset() ResetRule {
	if r.settings.AutoReset != nil {
		return *r.settings.AutoReset
	}
	if r.defaults.Reset != nil {
		return *r.defaults.Reset
	}
	return ResetRule{Day: Monday, Hour: 8}
}

// Timezone is the community-local zone used for resets and role syncs
func (r Resolved) Timezone() string {
	return r.timezone()
}

func (r Resolved) timezone() string {
	if r.defaults.Timezone != "" {
		return r.defaults.Timezone
	}
	return fallbackTimezone
}
