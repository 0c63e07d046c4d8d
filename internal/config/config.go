package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/KhaledO7/Discordbot/internal/roster"
	"github.com/KhaledO7/Discordbot/internal/schedule"
	"github.com/KhaledO7/Discordbot/internal/storage"
)

// Config is everything the process reads from the environment, once, at
// startup. Per-community configuration lives in the roster store instead;
// the Defaults here only apply to communities that never set their own
type Config struct {
	DiscordToken string
	LogLevel     string
	Storage      storage.Config
	Defaults     roster.Defaults
}

// Load reads the environment, with a .env file if one exists
func Load() (*Config, error) {
	// Ignore a missing .env, plain environment variables work too
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_BOT_TOKEN"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		Storage: storage.Config{
			Driver: envOrDefault("STORAGE_DRIVER", "file"),
			Path:   os.Getenv("STORAGE_PATH"),
		},
		Defaults: roster.Defaults{
			AnnouncementChannel: os.Getenv("ANNOUNCEMENT_CHANNEL_ID"),
			AvailableRole:       os.Getenv("AVAILABLE_ROLE_ID"),
			TeamARole:           os.Getenv("TEAM_A_ROLE_ID"),
			TeamBRole:           os.Getenv("TEAM_B_ROLE_ID"),
			ScrimTime:           envOrDefault("DEFAULT_SCRIM_TIME", "7:00 PM"),
			Timezone:            envOrDefault("DEFAULT_TIMEZONE", "America/New_York"),
		},
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if _, err := schedule.ParseTimeOfDay(cfg.Defaults.ScrimTime); err != nil {
		return nil, fmt.Errorf("DEFAULT_SCRIM_TIME: %w", err)
	}
	if _, err := schedule.LoadZone(cfg.Defaults.Timezone); err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	cfg.Defaults.Reset = resetRule()

	return cfg, nil
}

// resetRule reads the auto-reset fallback, shrugging off bad values the way
// the bot always has: warn and use Monday 08:00
func resetRule() *roster.ResetRule {
	rule := roster.ResetRule{Day: roster.Monday, Hour: 8}
	if raw := os.Getenv("AUTO_RESET_DAY"); raw != "" {
		day, err := roster.ParseWeekday(raw)
		if err != nil {
			log.Warn().Msg(fmt.Sprintf("Invalid AUTO_RESET_DAY %q, defaulting to monday", raw))
		} else {
			rule.Day = day
		}
	}
	if raw := os.Getenv("AUTO_RESET_HOUR"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil || hour < 0 || hour > 23 {
			log.Warn().Msg(fmt.Sprintf("Invalid AUTO_RESET_HOUR %q, defaulting to 8", raw))
		} else {
			rule.Hour = hour
		}
	}
	return &rule
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
