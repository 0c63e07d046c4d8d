package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Replies to interactions. Everything personal is ephemeral so the channel
// does not fill up with signup confirmations

func respond(discord *discordgo.Session, interaction *discordgo.Interaction, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	send(discord, interaction, data)
}

func respondEmbed(discord *discordgo.Session, interaction *discordgo.Interaction, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	send(discord, interaction, data)
}

func respondError(discord *discordgo.Session, interaction *discordgo.Interaction, err error) {
	respond(discord, interaction, fmt.Sprintf("Input not valid: \n> %s", err), true)
}

func send(discord *discordgo.Session, interaction *discordgo.Interaction, data *discordgo.InteractionResponseData) {
	err := discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not respond to interaction: %s", err))
	}
}
