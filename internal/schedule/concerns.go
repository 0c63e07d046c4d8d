package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

// reminderLead is how long before the scrim start the reminder goes out
const reminderLead = 30 * time.Minute

// A concern is one periodic behaviour of one community. It cycles forever:
// the scheduler asks for the next fire instant, waits, fires, and asks again
type concern interface {
	name() string
	community() string
	next(now time.Time) time.Time
	fire(ctx context.Context, now time.Time)
}

// communityZone loads the community-local zone, falling back to UTC so a
// broken configuration can never stall the scheduler
func communityZone(resolved roster.Resolved) *time.Location {
	loc, err := LoadZone(resolved.Timezone())
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Falling back to UTC: %s", err))
		return time.UTC
	}
	return loc
}

// scrimReminder sends a heads-up 30 minutes before the day's scrim start,
// but only on days where enough players signed up. The boundary is
// inclusive: the reminder is due as soon as now >= start - 30m
type scrimReminder struct {
	communityID string
	manager     *roster.Manager
	platform    Platform
	// local date of the scrim day last handled, guards at-most-once firing
	lastFired string
}

func (c *scrimReminder) name() string      { return "scrim-reminder" }
func (c *scrimReminder) community() string { return c.communityID }

// slotTarget resolves one weekday's reminder instant at or after now.
// ok is false when the slot's time or zone does not parse
func (c *scrimReminder) slotTarget(day roster.Weekday, now time.Time) (remindAt time.Time, scrimDate string, ok bool) {
	resolved := c.manager.Resolved(c.communityID)
	slot := resolved.ScrimSlotFor(day)
	tod, err := ParseTimeOfDay(slot.Time)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Skipping scrim slot for %s in community %s: %s", day, c.communityID, err))
		return time.Time{}, "", false
	}
	loc, err := LoadZone(slot.Timezone)
	if err != nil {
		log.Warn().Msg(fmt.Sprintf("Skipping scrim slot for %s in community %s: %s", day, c.communityID, err))
		return time.Time{}, "", false
	}
	scrimAt := NextOccurrence(day, tod, loc, now)
	if c.lastFired == LocalDate(loc, scrimAt) {
		// already reminded for this occurrence, look at next week's
		scrimAt = NextOccurrence(day, tod, loc, scrimAt.Add(time.Minute))
	}
	return scrimAt.Add(-reminderLead), LocalDate(loc, scrimAt), true
}

func (c *scrimReminder) next(now time.Time) time.Time {
	var best time.Time
	for _, day := range roster.Week {
		remindAt, _, ok := c.slotTarget(day, now)
		if !ok {
			continue
		}
		if remindAt.Before(now) {
			// inside the 30 minute window already, due right away
			remindAt = now
		}
		if best.IsZero() || remindAt.Before(best) {
			best = remindAt
		}
	}
	if best.IsZero() {
		// nothing parseable, check back in a while
		return now.Add(time.Hour)
	}
	return best
}

func (c *scrimReminder) fire(ctx context.Context, now time.Time) {
	for _, day := range roster.Week {
		remindAt, scrimDate, ok := c.slotTarget(day, now)
		if !ok || remindAt.After(now) {
			continue
		}
		c.lastFired = scrimDate
		report := c.manager.Readiness(c.communityID).Day(day)
		if !report.ScrimReady {
			// not enough players, stay silent on purpose
			log.Debug().Msg(fmt.Sprintf("Suppressing scrim reminder for %s in community %s: %d of %d players", day, c.communityID, report.ScrimTotal, roster.ScrimHeadcount))
			return
		}
		resolved := c.manager.Resolved(c.communityID)
		channel := resolved.AnnouncementChannel()
		if channel == "" {
			log.Debug().Msg(fmt.Sprintf("No announcement channel for community %s, skipping scrim reminder", c.communityID))
			return
		}
		content := fmt.Sprintf("Scrim starts in 30 minutes (%s)! %d players are in for %s.",
			FormatSlot(report.ScrimSlot, now), report.ScrimTotal, day.Title())
		if err := c.platform.SendAnnouncement(ctx, channel, content, resolved.PingRole()); err != nil {
			log.Warn().Msg(fmt.Sprintf("Could not send scrim reminder for community %s: %s", c.communityID, err))
		}
		return
	}
}

// dailyRoleSync keeps the "available today" role in line with the roster.
// At each community-local day start it grants the role to everyone available
// on the new day and revokes it from players it granted earlier who are not.
// It only ever revokes grants it issued itself, so manually assigned roles
// are never touched
type dailyRoleSync struct {
	communityID string
	manager     *roster.Manager
	platform    Platform
	lastFired   string
	granted     map[string]struct{}
}

func (c *dailyRoleSync) name() string      { return "role-sync" }
func (c *dailyRoleSync) community() string { return c.communityID }

func (c *dailyRoleSync) next(now time.Time) time.Time {
	loc := communityZone(c.manager.Resolved(c.communityID))
	return DayStart(loc, now)
}

func (c *dailyRoleSync) fire(ctx context.Context, now time.Time) {
	resolved := c.manager.Resolved(c.communityID)
	loc := communityZone(resolved)
	today := LocalDate(loc, now)
	if c.lastFired == today {
		return
	}
	c.lastFired = today

	role := resolved.AvailableRole()
	if role == "" {
		return
	}

	day := roster.FromTime(now.In(loc).Weekday())
	available := map[string]struct{}{}
	for _, record := range c.manager.ListAvailableOn(c.communityID, day) {
		available[record.Player] = struct{}{}
	}

	if c.granted == nil {
		c.granted = map[string]struct{}{}
	}
	kept := map[string]struct{}{}
	for player := range available {
		if _, ok := c.granted[player]; ok {
			kept[player] = struct{}{}
			continue
		}
		if err := c.platform.GrantRole(ctx, c.communityID, player, role); err != nil {
			// one failed grant must not stop the rest of the sync
			log.Warn().Msg(fmt.Sprintf("Could not grant role %s to player %s: %s", role, player, err))
			continue
		}
		kept[player] = struct{}{}
	}
	for player := range c.granted {
		if _, ok := available[player]; ok {
			continue
		}
		if err := c.platform.RevokeRole(ctx, c.communityID, player, role); err != nil {
			// keep them in the grant set so the revoke is retried tomorrow
			log.Warn().Msg(fmt.Sprintf("Could not revoke role %s from player %s: %s", role, player, err))
			kept[player] = struct{}{}
		}
	}
	c.granted = kept
	log.Info().Msg(fmt.Sprintf("Role sync for community %s done, %d players hold the role", c.communityID, len(kept)))
}

// weeklyReset wipes all availability at the configured day and hour and
// announces the fresh week if a channel is configured. The reset itself
// never depends on the announcement
type weeklyReset struct {
	communityID string
	manager     *roster.Manager
	platform    Platform
	lastFired   string
}

func (c *weeklyReset) name() string      { return "weekly-reset" }
func (c *weeklyReset) community() string { return c.communityID }

func (c *weeklyReset) next(now time.Time) time.Time {
	resolved := c.manager.Resolved(c.communityID)
	rule := resolved.AutoReset()
	loc := communityZone(resolved)
	target := NextOccurrence(rule.Day, TimeOfDay{Hour: rule.Hour}, loc, now)
	if c.lastFired == LocalDate(loc, target) {
		target = NextOccurrence(rule.Day, TimeOfDay{Hour: rule.Hour}, loc, target.Add(time.Minute))
	}
	return target
}

func (c *weeklyReset) fire(ctx context.Context, now time.Time) {
	resolved := c.manager.Resolved(c.communityID)
	rule := resolved.AutoReset()
	loc := communityZone(resolved)
	local := now.In(loc)
	if roster.FromTime(local.Weekday()) != rule.Day || local.Hour() < rule.Hour {
		return
	}
	today := LocalDate(loc, now)
	if c.lastFired == today {
		return
	}
	c.lastFired = today

	cleared, err := c.manager.ResetWeek(ctx, c.communityID)
	if err != nil {
		// skip this occurrence only, the next week's reset still happens
		log.Error().Msg(fmt.Sprintf("Weekly reset failed for community %s: %s", c.communityID, err))
		return
	}
	log.Info().Msg(fmt.Sprintf("Weekly reset for community %s cleared %d players", c.communityID, cleared))

	channel := resolved.AnnouncementChannel()
	if channel == "" {
		return
	}
	content := fmt.Sprintf("Weekly reset done: cleared availability for %d players. Set your days with /availability set or the signup panel!", cleared)
	if err := c.platform.SendAnnouncement(ctx, channel, content, ""); err != nil {
		log.Warn().Msg(fmt.Sprintf("Could not announce weekly reset for community %s: %s", c.communityID, err))
	}
}
