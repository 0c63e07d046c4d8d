package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KhaledO7/Discordbot/internal/bot"
	"github.com/KhaledO7/Discordbot/internal/config"
	"github.com/KhaledO7/Discordbot/internal/roster"
	"github.com/KhaledO7/Discordbot/internal/schedule"
	"github.com/KhaledO7/Discordbot/internal/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not load configuration: %s", err))
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	// Storage
	store, err := storage.Open(cfg.Storage)
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not open storage: %s", err))
	}
	defer store.Close()

	// Discord session, shared by the bot and the scheduler's gateway
	discord, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not create discord session: %s", err))
	}
	gateway := bot.NewGateway(discord)

	// Roster, seeded from storage
	manager := roster.NewManager(cfg.Defaults, store, gateway)
	snapshots, err := store.LoadCommunities(context.Background())
	if err != nil {
		log.Fatal().Msg(fmt.Sprintf("Could not load communities: %s", err))
	}
	for communityID, snapshot := range snapshots {
		manager.Seed(communityID, snapshot)
	}
	log.Info().Msg(fmt.Sprintf("Loaded %d communities from storage", len(snapshots)))

	// Scheduler
	sched := schedule.NewScheduler(manager, gateway)
	for _, communityID := range manager.Communities() {
		sched.Add(communityID)
	}

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sched.Run(ctx)

	if err := bot.CreateBot(discord, manager, sched).Run(ctx); err != nil {
		log.Fatal().Msg(fmt.Sprintf("Bot stopped: %s", err))
	}
}
