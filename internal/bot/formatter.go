package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/KhaledO7/Discordbot/internal/roster"
	"github.com/KhaledO7/Discordbot/internal/schedule"
)

// Use "valorant red" color for the bot
const color int = 0xFD4556

// WeekEmbed renders the readiness report, one field per weekday
func WeekEmbed(report roster.Report, now time.Time) *discordgo.MessageEmbed {
	embed := discordgo.MessageEmbed{Title: "Week schedule", Color: color}
	for _, dayReport := range report.Days {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   dayReport.Day.Title(),
			Value:  dayValue(dayReport, now),
			Inline: false,
		})
	}
	return &embed
}

func dayValue(dayReport roster.DayReport, now time.Time) string {
	lines := []string{
		premierLine(dayReport),
		scrimLine(dayReport, now),
	}
	if len(dayReport.Names) > 0 {
		lines = append(lines, fmt.Sprintf("Available: %s", strings.Join(dayReport.Names, ", ")))
	} else {
		lines = append(lines, "Available: nobody yet")
	}
	return strings.Join(lines, "\n")
}

func premierLine(dayReport roster.DayReport) string {
	if dayReport.PremierWindow == "" {
		return "Premier: no match this day"
	}
	if dayReport.PremierReady {
		return fmt.Sprintf("Premier: **Team %s ready** @ %s", dayReport.PremierTeam, dayReport.PremierWindow)
	}
	return fmt.Sprintf("Premier: not ready (A %d/%d, B %d/%d) @ %s",
		dayReport.TeamACount, roster.PremierTeamSize, dayReport.TeamBCount, roster.PremierTeamSize, dayReport.PremierWindow)
}

func scrimLine(dayReport roster.DayReport, now time.Time) string {
	slot := schedule.FormatSlot(dayReport.ScrimSlot, now)
	if dayReport.ScrimReady {
		return fmt.Sprintf("Scrim: **ready** (%d/%d) @ %s", dayReport.ScrimTotal, roster.ScrimHeadcount, slot)
	}
	return fmt.Sprintf("Scrim: %d/%d, need %d more @ %s", dayReport.ScrimTotal, roster.ScrimHeadcount, dayReport.ScrimDeficit, slot)
}

// DayEmbed lists who is available on one weekday, with team tags
func DayEmbed(day roster.Weekday, records []roster.Record) *discordgo.MessageEmbed {
	embed := discordgo.MessageEmbed{Title: fmt.Sprintf("Available on %s", day.Title()), Color: color}
	if len(records) == 0 {
		embed.Description = "Nobody yet"
		return &embed
	}
	lines := make([]string, len(records))
	for i, record := range records {
		if record.Team == roster.TeamNone {
			lines[i] = record.Name
		} else {
			lines[i] = fmt.Sprintf("%s (Team %s)", record.Name, record.Team)
		}
	}
	embed.Description = strings.Join(lines, "\n")
	return &embed
}

// PanelEmbed introduces the self-service availability panel
func PanelEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Weekly availability",
		Description: "Pick the days you can play this week. Picking again replaces your previous answer.",
		Color:       color,
	}
}

func availabilitySetMessage(record roster.Record) string {
	if len(record.Days) == 0 {
		return "You are marked unavailable for the whole week"
	}
	team := ""
	if record.Team != roster.TeamNone {
		team = fmt.Sprintf(" (Team %s)", record.Team)
	}
	return fmt.Sprintf("You are down for %s%s", joinDayTitles(record.Days), team)
}

func mineMessage(record roster.Record, ok bool) string {
	if !ok || len(record.Days) == 0 {
		return "You have no availability set for this week"
	}
	return availabilitySetMessage(record)
}

func joinDayTitles(days []roster.Weekday) string {
	titles := make([]string, len(days))
	for i, day := range days {
		titles[i] = day.Title()
	}
	return strings.Join(titles, ", ")
}
