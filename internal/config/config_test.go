package config

import (
	"testing"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token-123")
	t.Setenv("AUTO_RESET_DAY", "")
	t.Setenv("AUTO_RESET_HOUR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DiscordToken != "token-123" {
		t.Errorf("token = %q", cfg.DiscordToken)
	}
	if cfg.Storage.Driver != "file" {
		t.Errorf("driver = %q, want file", cfg.Storage.Driver)
	}
	if cfg.Defaults.ScrimTime != "7:00 PM" || cfg.Defaults.Timezone != "America/New_York" {
		t.Errorf("scrim defaults = %q %q", cfg.Defaults.ScrimTime, cfg.Defaults.Timezone)
	}
	if cfg.Defaults.Reset == nil || cfg.Defaults.Reset.Day != roster.Monday || cfg.Defaults.Reset.Hour != 8 {
		t.Errorf("reset rule = %+v, want Monday 8", cfg.Defaults.Reset)
	}
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatal("a missing token must be an error")
	}
}

func TestLoadRejectsBadScrimTime(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token-123")
	t.Setenv("DEFAULT_SCRIM_TIME", "whenever")
	if _, err := Load(); err == nil {
		t.Fatal("an unparseable default scrim time must be an error")
	}
}

func TestResetRuleOverrides(t *testing.T) {
	t.Setenv("AUTO_RESET_DAY", "sunday")
	t.Setenv("AUTO_RESET_HOUR", "22")
	rule := resetRule()
	if rule.Day != roster.Sunday || rule.Hour != 22 {
		t.Errorf("rule = %+v, want Sunday 22", rule)
	}

	t.Setenv("AUTO_RESET_DAY", "someday")
	t.Setenv("AUTO_RESET_HOUR", "99")
	rule = resetRule()
	if rule.Day != roster.Monday || rule.Hour != 8 {
		t.Errorf("bad values should fall back, got %+v", rule)
	}
}
