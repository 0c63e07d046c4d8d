package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// ErrPlatformAction marks a Discord call that was rejected or timed out.
// Callers log it and move on; it never aborts a broader operation
var ErrPlatformAction = errors.New("platform action failed")

// Outbound Discord traffic is throttled so a role sync over a big roster
// cannot burst into the API rate limits
const (
	actionsPerSecond = 4
	actionBurst      = 8
)

// Gateway is the one place the scheduler and the roster touch Discord:
// announcements, role grants and revokes, and role membership lookups
type Gateway struct {
	session *discordgo.Session
	limiter *rate.Limiter
}

func NewGateway(session *discordgo.Session) *Gateway {
	return &Gateway{
		session: session,
		limiter: rate.NewLimiter(rate.Limit(actionsPerSecond), actionBurst),
	}
}

func (g *Gateway) SendAnnouncement(ctx context.Context, channelID string, content string, mentionRole string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformAction, err)
	}
	message := &discordgo.MessageSend{Content: content}
	if mentionRole != "" {
		message.Content = fmt.Sprintf("<@&%s> %s", mentionRole, content)
		message.AllowedMentions = &discordgo.MessageAllowedMentions{Roles: []string{mentionRole}}
	}
	if _, err := g.session.ChannelMessageSendComplex(channelID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: sending to channel %s: %v", ErrPlatformAction, channelID, err)
	}
	return nil
}

func (g *Gateway) GrantRole(ctx context.Context, communityID string, player string, roleID string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformAction, err)
	}
	if err := g.session.GuildMemberRoleAdd(communityID, player, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: granting role %s to %s: %v", ErrPlatformAction, roleID, player, err)
	}
	return nil
}

func (g *Gateway) RevokeRole(ctx context.Context, communityID string, player string, roleID string) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformAction, err)
	}
	if err := g.session.GuildMemberRoleRemove(communityID, player, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: revoking role %s from %s: %v", ErrPlatformAction, roleID, player, err)
	}
	return nil
}

// MemberHasRole checks the session cache first and falls back to the API
func (g *Gateway) MemberHasRole(ctx context.Context, communityID string, player string, roleID string) (bool, error) {
	member, err := g.session.State.Member(communityID, player)
	if err != nil {
		member, err = g.session.GuildMember(communityID, player, discordgo.WithContext(ctx))
		if err != nil {
			return false, fmt.Errorf("%w: looking up member %s: %v", ErrPlatformAction, player, err)
		}
	}
	for _, role := range member.Roles {
		if role == roleID {
			return true, nil
		}
	}
	return false, nil
}
