// Package bot is the Discord face of the availability tracker: slash
// commands, the self-service panel, and the gateway the scheduler sends
// announcements and role changes through.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/KhaledO7/Discordbot/internal/roster"
	"github.com/KhaledO7/Discordbot/internal/schedule"
)

// interactionTimeout bounds the work behind a single command. Discord
// expects an answer within a few seconds anyway
const interactionTimeout = 10 * time.Second

type Bot struct {
	discord *discordgo.Session
	manager *roster.Manager
	sched   *schedule.Scheduler

	// clock is replaceable so tests can pin the displayed times
	clock func() time.Time
}

func CreateBot(discord *discordgo.Session, manager *roster.Manager, sched *schedule.Scheduler) *Bot {
	return &Bot{discord: discord, manager: manager, sched: sched, clock: time.Now}
}

// Run opens the gateway session, registers the commands and blocks until
// the context is cancelled
func (bot *Bot) Run(ctx context.Context) error {
	bot.discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	bot.discord.AddHandler(bot.onReady)
	bot.discord.AddHandler(bot.onGuildCreate)
	bot.discord.AddHandler(bot.onGuildDelete)
	bot.discord.AddHandler(bot.onInteraction)

	if err := bot.discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer bot.discord.Close()

	appID := bot.discord.State.User.ID
	if _, err := bot.discord.ApplicationCommandBulkOverwrite(appID, "", commandDefinitions()); err != nil {
		return fmt.Errorf("could not register commands: %w", err)
	}
	log.Info().Msg("Commands registered, bot is up")

	<-ctx.Done()
	return nil
}

func (bot *Bot) onReady(discord *discordgo.Session, ready *discordgo.Ready) {
	log.Info().Msg(fmt.Sprintf("Logged in as %s, serving %d guilds", ready.User.Username, len(ready.Guilds)))
}

// onGuildCreate fires on startup for every known guild and again whenever
// the bot is invited somewhere new
func (bot *Bot) onGuildCreate(discord *discordgo.Session, event *discordgo.GuildCreate) {
	log.Debug().Msg(fmt.Sprintf("Guild available: %s", event.ID))
	bot.manager.Ensure(event.ID)
	bot.sched.Add(event.ID)
}

func (bot *Bot) onGuildDelete(discord *discordgo.Session, event *discordgo.GuildDelete) {
	if event.Unavailable {
		return
	}
	log.Info().Msg(fmt.Sprintf("Removed from guild %s", event.ID))
	bot.sched.Remove(event.ID)
}

func (bot *Bot) onInteraction(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	// Availability is meaningless outside a server
	if interaction.GuildID == "" || interaction.Member == nil {
		respond(discord, interaction.Interaction, "This only works inside a server", true)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		data := interaction.ApplicationCommandData()
		log.Debug().Msg(fmt.Sprintf("Command /%s from player %s in guild %s", data.Name, interaction.Member.User.ID, interaction.GuildID))
		switch data.Name {
		case "availability":
			bot.handleAvailability(ctx, discord, interaction)
		case "schedule":
			bot.handleSchedule(ctx, discord, interaction)
		case "config":
			bot.handleConfig(ctx, discord, interaction)
		}
	case discordgo.InteractionMessageComponent:
		bot.handleComponent(ctx, discord, interaction)
	}
}
