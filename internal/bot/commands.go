package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/KhaledO7/Discordbot/internal/roster"
	"github.com/KhaledO7/Discordbot/internal/schedule"
)

func weekdayChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(roster.Week))
	for i, day := range roster.Week {
		choices[i] = &discordgo.ApplicationCommandOptionChoice{Name: day.Title(), Value: day.String()}
	}
	return choices
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	dayOption := func(name, description string, required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        name,
			Description: description,
			Required:    required,
			Choices:     weekdayChoices(),
		}
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "availability",
			Description: "Tell the team which days you can play this week",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "set",
					Description: "Set your days for the week, replacing your previous answer",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "days",
							Description: "Comma separated days, like 'wed,thu,sun'",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "team",
							Description: "Your premier team, if your roles do not say",
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Team A", Value: "A"},
								{Name: "Team B", Value: "B"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "mine",
					Description: "Show the days you are signed up for",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Withdraw your availability for the week",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "day",
					Description: "Show who is available on a day",
					Options:     []*discordgo.ApplicationCommandOption{dayOption("day", "Which day", true)},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "panel",
					Description: "Post the self-service availability panel in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "resetweek",
					Description: "Clear everyone's availability for a fresh week",
				},
			},
		},
		{
			Name:        "schedule",
			Description: "Premier and scrim readiness for the week",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "preview",
					Description: "Show the week schedule, visible only to you",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "post",
					Description: "Post the week schedule to the announcement channel",
				},
			},
		},
		{
			Name:        "config",
			Description: "Configure the bot for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "announcement",
					Description: "Channel for schedules, reminders and reset notices",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "The channel",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "pingrole",
					Description: "Role mentioned in announcements",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "availablerole",
					Description: "Role granted daily to players available that day",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "The role",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "teamroles",
					Description: "Roles used to derive a player's premier team",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "team_a",
							Description: "Role for team A",
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "team_b",
							Description: "Role for team B",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "scrimtime",
					Description: "Override the scrim start for one weekday",
					Options: []*discordgo.ApplicationCommandOption{
						dayOption("day", "Which day", true),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "time",
							Description: "Start time, like '19:00' or '7:00 PM'",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "timezone",
							Description: "IANA timezone, like America/Chicago",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "premierwindow",
					Description: "Override the premier window shown for one weekday",
					Options: []*discordgo.ApplicationCommandOption{
						dayOption("day", "Which day", true),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "window",
							Description: "Display text like '7-8 PM ET', or 'off' for no match",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "autoreset",
					Description: "When the weekly availability reset happens",
					Options: []*discordgo.ApplicationCommandOption{
						dayOption("day", "Which day", true),
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "hour",
							Description: "Local hour, 0 to 23",
							Required:    true,
							MinValue:    &zero,
							MaxValue:    23,
						},
					},
				},
			},
		},
	}
}

var zero float64 = 0

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(list []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := options{}
	for _, option := range list {
		m[option.Name] = option
	}
	return m
}

func (o options) text(name string) string {
	if option, ok := o[name]; ok {
		return option.StringValue()
	}
	return ""
}

func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

func canManage(member *discordgo.Member) bool {
	return member.Permissions&(discordgo.PermissionManageServer|discordgo.PermissionAdministrator) != 0
}

func (bot *Bot) handleAvailability(ctx context.Context, discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ApplicationCommandData()
	sub := data.Options[0]
	opts := optionMap(sub.Options)
	communityID := interaction.GuildID
	member := interaction.Member

	switch sub.Name {
	case "set":
		days, err := roster.ParseDays(opts.text("days"))
		if err != nil {
			respondError(discord, interaction.Interaction, err)
			return
		}
		team := roster.ParseTeam(opts.text("team"))
		record, err := bot.manager.SetAvailability(ctx, communityID, member.User.ID, displayName(member), days, team)
		if err != nil {
			log.Error().Msg(fmt.Sprintf("Could not save availability for player %s: %s", member.User.ID, err))
		}
		respond(discord, interaction.Interaction, availabilitySetMessage(record), true)
	case "mine":
		record, ok := bot.manager.GetAvailability(communityID, member.User.ID)
		respond(discord, interaction.Interaction, mineMessage(record, ok), true)
	case "clear":
		existed, err := bot.manager.ClearAvailability(ctx, communityID, member.User.ID)
		if err != nil {
			log.Error().Msg(fmt.Sprintf("Could not clear availability for player %s: %s", member.User.ID, err))
		}
		if existed {
			respond(discord, interaction.Interaction, "Your availability has been cleared", true)
		} else {
			respond(discord, interaction.Interaction, "You had no availability set", true)
		}
	case "day":
		day, err := roster.ParseWeekday(opts.text("day"))
		if err != nil {
			respondError(discord, interaction.Interaction, err)
			return
		}
		records := bot.manager.ListAvailableOn(communityID, day)
		respondEmbed(discord, interaction.Interaction, DayEmbed(day, records), false)
	case "panel":
		bot.postPanel(discord, interaction)
	case "resetweek":
		if !canManage(member) {
			respond(discord, interaction.Interaction, "You need the Manage Server permission for that", true)
			return
		}
		cleared, err := bot.manager.ResetWeek(ctx, communityID)
		if err != nil {
			log.Error().Msg(fmt.Sprintf("Could not reset week for community %s: %s", communityID, err))
		}
		respond(discord, interaction.Interaction, fmt.Sprintf("Week reset, cleared %d players", cleared), false)
	}
}

func (bot *Bot) handleSchedule(ctx context.Context, discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ApplicationCommandData()
	sub := data.Options[0]
	communityID := interaction.GuildID
	report := bot.manager.Readiness(communityID)
	embed := WeekEmbed(report, bot.clock())

	switch sub.Name {
	case "preview":
		respondEmbed(discord, interaction.Interaction, embed, true)
	case "post":
		resolved := bot.manager.Resolved(communityID)
		channelID := resolved.AnnouncementChannel()
		if channelID == "" {
			respond(discord, interaction.Interaction, "No announcement channel configured, see `/config announcement`", true)
			return
		}
		message := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
		if ping := resolved.PingRole(); ping != "" {
			message.Content = fmt.Sprintf("<@&%s>", ping)
			message.AllowedMentions = &discordgo.MessageAllowedMentions{Roles: []string{ping}}
		}
		if _, err := discord.ChannelMessageSendComplex(channelID, message, discordgo.WithContext(ctx)); err != nil {
			log.Error().Msg(fmt.Sprintf("Could not post schedule to channel %s: %s", channelID, err))
			respond(discord, interaction.Interaction, "Could not post to the announcement channel", true)
			return
		}
		respond(discord, interaction.Interaction, "Schedule posted", true)
	}
}

func (bot *Bot) handleConfig(ctx context.Context, discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	member := interaction.Member
	if !canManage(member) {
		respond(discord, interaction.Interaction, "You need the Manage Server permission for that", true)
		return
	}
	data := interaction.ApplicationCommandData()
	sub := data.Options[0]
	opts := optionMap(sub.Options)
	communityID := interaction.GuildID

	var err error
	confirmation := ""
	switch sub.Name {
	case "announcement":
		channel := opts["channel"].ChannelValue(discord)
		err = bot.manager.SetAnnouncementChannel(ctx, communityID, channel.ID)
		confirmation = fmt.Sprintf("Announcements go to <#%s> from now on", channel.ID)
	case "pingrole":
		role := opts["role"].RoleValue(discord, communityID)
		err = bot.manager.SetPingRole(ctx, communityID, role.ID)
		confirmation = fmt.Sprintf("Announcements will mention <@&%s>", role.ID)
	case "availablerole":
		role := opts["role"].RoleValue(discord, communityID)
		err = bot.manager.SetAvailableRole(ctx, communityID, role.ID)
		confirmation = fmt.Sprintf("Players available today get <@&%s>, synced at midnight", role.ID)
	case "teamroles":
		teamA, teamB := "", ""
		if option, ok := opts["team_a"]; ok {
			teamA = option.RoleValue(discord, communityID).ID
		}
		if option, ok := opts["team_b"]; ok {
			teamB = option.RoleValue(discord, communityID).ID
		}
		if teamA == "" && teamB == "" {
			respond(discord, interaction.Interaction, "Give at least one of team_a or team_b", true)
			return
		}
		err = bot.manager.SetTeamRoles(ctx, communityID, teamA, teamB)
		confirmation = "Team roles updated"
	case "scrimtime":
		confirmation, err = bot.configScrimTime(ctx, communityID, opts)
		if err != nil {
			respondError(discord, interaction.Interaction, err)
			return
		}
		bot.sched.Kick()
	case "premierwindow":
		day, parseErr := roster.ParseWeekday(opts.text("day"))
		if parseErr != nil {
			respondError(discord, interaction.Interaction, parseErr)
			return
		}
		window := opts.text("window")
		if window == "off" || window == "none" {
			window = ""
		}
		err = bot.manager.SetPremierWindow(ctx, communityID, day, window)
		if window == "" {
			confirmation = fmt.Sprintf("No premier match on %s", day.Title())
		} else {
			confirmation = fmt.Sprintf("Premier window on %s is now %s", day.Title(), window)
		}
	case "autoreset":
		day, parseErr := roster.ParseWeekday(opts.text("day"))
		if parseErr != nil {
			respondError(discord, interaction.Interaction, parseErr)
			return
		}
		hour := int(opts["hour"].IntValue())
		err = bot.manager.SetAutoReset(ctx, communityID, roster.ResetRule{Day: day, Hour: hour})
		confirmation = fmt.Sprintf("Weekly reset happens on %s at %02d:00", day.Title(), hour)
		bot.sched.Kick()
	}
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not save settings for community %s: %s", communityID, err))
		respond(discord, interaction.Interaction, "Saved in memory, but persisting the change failed", true)
		return
	}
	respond(discord, interaction.Interaction, confirmation, true)
}

func (bot *Bot) configScrimTime(ctx context.Context, communityID string, opts options) (string, error) {
	day, err := roster.ParseWeekday(opts.text("day"))
	if err != nil {
		return "", err
	}
	slot := roster.ScrimSlot{Time: opts.text("time"), Timezone: opts.text("timezone")}
	if slot.Timezone == "" {
		slot.Timezone = bot.manager.Resolved(communityID).Timezone()
	}
	if _, err := schedule.ParseTimeOfDay(slot.Time); err != nil {
		return "", err
	}
	if _, err := schedule.LoadZone(slot.Timezone); err != nil {
		return "", err
	}
	if err := bot.manager.SetScrimTime(ctx, communityID, day, slot); err != nil {
		return "", err
	}
	return fmt.Sprintf("Scrim on %s now starts at %s (%s)", day.Title(), slot.Time, slot.Timezone), nil
}
