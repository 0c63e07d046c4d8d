package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

func sampleDayReport() roster.DayReport {
	return roster.DayReport{
		Day:           roster.Wednesday,
		TeamACount:    5,
		TeamBCount:    3,
		PremierReady:  true,
		PremierTeam:   roster.TeamA,
		PremierWindow: "7–8 PM ET",
		ScrimTotal:    8,
		ScrimDeficit:  2,
		ScrimSlot:     roster.ScrimSlot{Time: "7:00 PM", Timezone: "America/New_York"},
		Names:         []string{"Ana", "Mia"},
	}
}

func TestPremierLine(t *testing.T) {
	t.Parallel()
	ready := premierLine(sampleDayReport())
	if !strings.Contains(ready, "Team A ready") || !strings.Contains(ready, "7–8 PM ET") {
		t.Errorf("ready line = %q", ready)
	}

	notReady := sampleDayReport()
	notReady.PremierReady = false
	notReady.PremierTeam = roster.TeamNone
	line := premierLine(notReady)
	if !strings.Contains(line, "not ready") || !strings.Contains(line, "A 5/5") || !strings.Contains(line, "B 3/5") {
		t.Errorf("not-ready line = %q", line)
	}

	off := sampleDayReport()
	off.PremierWindow = ""
	if got := premierLine(off); got != "Premier: no match this day" {
		t.Errorf("off line = %q", got)
	}
}

func TestScrimLine(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	short := scrimLine(sampleDayReport(), now)
	if !strings.Contains(short, "8/10") || !strings.Contains(short, "need 2 more") {
		t.Errorf("short line = %q", short)
	}

	ready := sampleDayReport()
	ready.ScrimTotal = 10
	ready.ScrimReady = true
	ready.ScrimDeficit = 0
	line := scrimLine(ready, now)
	if !strings.Contains(line, "ready") || !strings.Contains(line, "10/10") {
		t.Errorf("ready line = %q", line)
	}
}

func TestWeekEmbedHasAllDays(t *testing.T) {
	t.Parallel()
	manager := roster.NewManager(roster.Defaults{ScrimTime: "7:00 PM", Timezone: "America/New_York"}, nil, nil)
	manager.Ensure("g1")
	embed := WeekEmbed(manager.Readiness("g1"), time.Now())
	if len(embed.Fields) != 7 {
		t.Fatalf("embed has %d fields, want 7", len(embed.Fields))
	}
	if embed.Fields[0].Name != "Monday" || embed.Fields[6].Name != "Sunday" {
		t.Errorf("days out of order: %s .. %s", embed.Fields[0].Name, embed.Fields[6].Name)
	}
	if !strings.Contains(embed.Fields[2].Value, "0/10") {
		t.Errorf("empty Wednesday should show the deficit, got %q", embed.Fields[2].Value)
	}
}

func TestDayEmbed(t *testing.T) {
	t.Parallel()
	empty := DayEmbed(roster.Friday, nil)
	if empty.Description != "Nobody yet" {
		t.Errorf("empty description = %q", empty.Description)
	}
	records := []roster.Record{
		{Player: "p1", Name: "Ana", Team: roster.TeamA},
		{Player: "p2", Name: "Mia"},
	}
	embed := DayEmbed(roster.Friday, records)
	if !strings.Contains(embed.Description, "Ana (Team A)") || !strings.Contains(embed.Description, "Mia") {
		t.Errorf("description = %q", embed.Description)
	}
}

func TestAvailabilityMessages(t *testing.T) {
	t.Parallel()
	record := roster.Record{Name: "Ana", Team: roster.TeamB, Days: []roster.Weekday{roster.Wednesday, roster.Sunday}}
	message := availabilitySetMessage(record)
	if !strings.Contains(message, "Wednesday, Sunday") || !strings.Contains(message, "Team B") {
		t.Errorf("set message = %q", message)
	}
	if got := mineMessage(roster.Record{}, false); got != "You have no availability set for this week" {
		t.Errorf("mine message = %q", got)
	}
}

func TestCommandDefinitions(t *testing.T) {
	t.Parallel()
	definitions := commandDefinitions()
	if len(definitions) != 3 {
		t.Fatalf("got %d top level commands, want 3", len(definitions))
	}
	names := map[string]int{}
	for _, definition := range definitions {
		names[definition.Name] = len(definition.Options)
	}
	if names["availability"] != 6 {
		t.Errorf("availability has %d subcommands, want 6", names["availability"])
	}
	if names["schedule"] != 2 {
		t.Errorf("schedule has %d subcommands, want 2", names["schedule"])
	}
	if names["config"] != 7 {
		t.Errorf("config has %d subcommands, want 7", names["config"])
	}
	if got := len(weekdayChoices()); got != 7 {
		t.Errorf("weekday choices = %d, want 7", got)
	}
}
