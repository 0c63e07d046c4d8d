package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

// Component ids the panel message carries. The panel survives restarts
// because the ids are static, not per-message state
const (
	panelDaysID  = "availability_days"
	panelClearID = "availability_clear"
)

func panelComponents() []discordgo.MessageComponent {
	minDays := 1
	options := make([]discordgo.SelectMenuOption, len(roster.Week))
	for i, day := range roster.Week {
		options[i] = discordgo.SelectMenuOption{Label: day.Title(), Value: day.String()}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    panelDaysID,
					Placeholder: "Which days can you play?",
					MinValues:   &minDays,
					MaxValues:   len(roster.Week),
					Options:     options,
				},
			},
		},
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: panelClearID,
					Label:    "Clear my week",
					Style:    discordgo.SecondaryButton,
				},
			},
		},
	}
}

// postPanel drops the panel into the channel the command came from and
// confirms to the caller privately
func (bot *Bot) postPanel(discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	_, err := discord.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{PanelEmbed()},
		Components: panelComponents(),
	})
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not post panel to channel %s: %s", interaction.ChannelID, err))
		respond(discord, interaction.Interaction, "Could not post the panel here", true)
		return
	}
	respond(discord, interaction.Interaction, "Panel posted", true)
}

// handleComponent reacts to the panel's select and button
func (bot *Bot) handleComponent(ctx context.Context, discord *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.MessageComponentData()
	communityID := interaction.GuildID
	member := interaction.Member

	switch data.CustomID {
	case panelDaysID:
		days := make([]roster.Weekday, 0, len(data.Values))
		for _, value := range data.Values {
			day, err := roster.ParseWeekday(value)
			if err != nil {
				respondError(discord, interaction.Interaction, err)
				return
			}
			days = append(days, day)
		}
		record, err := bot.manager.SetAvailability(ctx, communityID, member.User.ID, displayName(member), days, roster.TeamNone)
		if err != nil {
			log.Error().Msg(fmt.Sprintf("Could not save availability for player %s: %s", member.User.ID, err))
		}
		respond(discord, interaction.Interaction, availabilitySetMessage(record), true)
	case panelClearID:
		existed, err := bot.manager.ClearAvailability(ctx, communityID, member.User.ID)
		if err != nil {
			log.Error().Msg(fmt.Sprintf("Could not clear availability for player %s: %s", member.User.ID, err))
		}
		if existed {
			respond(discord, interaction.Interaction, "Your availability has been cleared", true)
		} else {
			respond(discord, interaction.Interaction, "You had no availability set", true)
		}
	}
}
