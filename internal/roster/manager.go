package roster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Persister stores a community's state durably. The roster manager writes
// through on every mutation and never reads it back after startup
type Persister interface {
	SaveRoster(ctx context.Context, community string, records []Record) error
	SaveSettings(ctx context.Context, community string, settings Settings) error
}

// RoleMembership asks the chat platform whether a player holds a role.
// Used to derive the team of a player who did not pick one explicitly
type RoleMembership interface {
	MemberHasRole(ctx context.Context, community string, player string, role string) (bool, error)
}

// Snapshot is the persisted state of one community, used for seeding at startup
type Snapshot struct {
	Records  []Record
	Settings Settings
}

type community struct {
	mu       sync.Mutex
	records  map[string]Record
	settings Settings
}

// Manager owns all mutable state, one bundle per community. Every operation
// locks only the community it touches, so communities never contend
type Manager struct {
	mu          sync.RWMutex
	communities map[string]*community
	store       Persister
	members     RoleMembership
	defaults    Defaults
}

func NewManager(defaults Defaults, store Persister, members RoleMembership) *Manager {
	return &Manager{
		communities: map[string]*community{},
		store:       store,
		members:     members,
		defaults:    defaults,
	}
}

// Seed installs state loaded from the persistence layer. Call before any
// other operation, once per community
func (m *Manager) Seed(communityID string, snap Snapshot) {
	c := &community{records: map[string]Record{}, settings: snap.Settings}
	for _, record := range snap.Records {
		c.records[record.Player] = record
	}
	m.mu.Lock()
	m.communities[communityID] = c
	m.mu.Unlock()
}

// Ensure registers a community the first time the bot sees it
func (m *Manager) Ensure(communityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.communities[communityID]; !ok {
		m.communities[communityID] = &community{records: map[string]Record{}}
	}
}

// Communities lists the ids currently known to the manager
func (m *Manager) Communities() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.communities))
	for id := range m.communities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) community(communityID string) *community {
	m.mu.RLock()
	c, ok := m.communities[communityID]
	m.mu.RUnlock()
	if !ok {
		m.Ensure(communityID)
		m.mu.RLock()
		c = m.communities[communityID]
		m.mu.RUnlock()
	}
	return c
}

// SetAvailability replaces the player's record for the week. Days are not
// merged with a previous record. Team resolution order: the explicit
// argument, then a configured team role the player holds, then none
func (m *Manager) SetAvailability(ctx context.Context, communityID, player, name string, days []Weekday, team Team) (Record, error) {
	c := m.community(communityID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if team == TeamNone {
		team = m.resolveTeam(ctx, communityID, player, c.settings)
	}
	record := Record{Player: player, Name: name, Team: team, Days: normalizeDays(days)}
	c.records[player] = record
	return record, m.persistRoster(ctx, communityID, c)
}

// resolveTeam checks the configured team roles against the platform.
// A lookup failure just means no derived team; signup must not fail on it
func (m *Manager) resolveTeam(ctx context.Context, communityID, player string, settings Settings) Team {
	if m.members == nil {
		return TeamNone
	}
	resolved := Resolved{settings: settings, defaults: m.defaults}
	for _, team := range []Team{TeamA, TeamB} {
		role := resolved.TeamRole(team)
		if role == "" {
			continue
		}
		has, err := m.members.MemberHasRole(ctx, communityID, player, role)
		if err != nil {
			log.Warn().Msg(fmt.Sprintf("Could not check team role %s for player %s: %s", role, player, err))
			continue
		}
		if has {
			return team
		}
	}
	return TeamNone
}

// ClearAvailability removes the player's record, reporting whether one existed
func (m *Manager) ClearAvailability(ctx context.Context, communityID, player string) (bool, error) {
	c := m.community(communityID)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[player]; !ok {
		return false, nil
	}
	delete(c.records, player)
	return true, m.persistRoster(ctx, communityID, c)
}

// GetAvailability returns the player's record if there is one
func (m *Manager) GetAvailability(communityID, player string) (Record, bool) {
	c := m.community(communityID)
	c.mu.Lock()
	defer c.mu.Unlock()
	record, ok := c.records[player]
	return record, ok
}

// ListAvailableOn returns every record that includes the given day,
// sorted by display name for stable rendering
func (m *Manager) ListAvailableOn(communityID string, day Weekday) []Record {
	c := m.community(communityID)
	c.mu.Lock()
	defer c.mu.Unlock()
	records := []Record{}
	for _, record := range c.records {
		if record.HasDay(day) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

// ResetWeek wipes all availability for the community and returns the number
// of players cleared. Settings are untouched
func (m *Manager) ResetWeek(ctx context.Context, communityID string) (int, error) {
	c := m.community(communityID)
	c.mu.Lock()
	defer c.mu.Unlock()
	cleared := len(c.records)
	c.records = map[string]Record{}
	return cleared, m.persistRoster(ctx, communityID, c)
}

// Resolved returns the community's configuration with defaults applied
func (m *Manager) Resolved(communityID string) Resolved {
	c := m.community(communityID)
	c.mu.Lock()
	defer c.mu.Unlock()
	return Resolved{settings: c.settings, defaults: m.defaults}
}

func (m *Manager) SetAnnouncementChannel(ctx context.Context, communityID, channel string) error {
	return m.updateSettings(ctx, communityID, func(s *Settings) {
		s.AnnouncementChannel = channel
	})
}

func (m *Manager) SetPingRole(ctx context.Context, communityID, role string) error {
	return m.updateSettings(ctx, communityID, func(s *Settings) {
		s.PingRole = role
	})
}

func (m *Manager) SetAvailableRole(ctx context.Context, communityID, role string) error {
	return m.updateSettings(ctx, communityID, func(s *Settings) {
		s.AvailableRole = role
	})
}

// SetTeamRoles updates only the teams that were provided
func (m *Manager) SetTeamRoles(ctx context.Context, communityID, teamA, teamB string) error {
	return m.updateSettings(ctx, communityID, func(s *Settings) {
		if teamA != "" {
			s.TeamARole = teamA
		}
		if teamB != "" {
			s.TeamBRole = teamB
		}
	})
}

// SetScrimTime overrides the scrim start for one weekday; the other days
// keep their own overrides or the default. The slot must be validated
// (time spelling and timezone) before it gets here
func (m *Manager) SetScrimTime(ctx context.Context, communityID string, day Weekday, slot ScrimSlot) error {
	return m.updateSettings(ctx, communityID, func(s *Settings) {
		if s.ScrimTimes == nil {
			s.ScrimTimes = map[Weekday]ScrimSlot{}
		}
		s.ScrimTimes[day] = slot
	})
}

// SetPremierWindow overrides the premier display window for one weekday.
// An empty window turns premier off for that day
func (m *Manager) SetPremierWindow(ctx context.Context, communityID string, day Weekday, window string) error {
	return m.updateSettings(ctx, communityID, func(s *Settings) {
		if s.PremierWindows == nil {
			s.PremierWindows = map[Weekday]string{}
		}
		s.PremierWindows[day] = window
	})
}

func (m *Manager) SetAutoReset(ctx context.Context, communityID string, rule ResetRule) error {
	return m.updateSettings(ctx, communityID, func(s *Settings) {
		s.AutoReset = &rule
	})
}

func (m *Manager) updateSettings(ctx context.Context, communityID string, apply func(*Settings)) error {
	c := m.community(communityID)
	c.mu.Lock()
	defer c.mu.Unlock()
	apply(&c.settings)
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveSettings(ctx, communityID, c.settings); err != nil {
		return fmt.Errorf("saving settings for community %s: %w", communityID, err)
	}
	return nil
}

// persistRoster writes the community's records, caller holds the lock
func (m *Manager) persistRoster(ctx context.Context, communityID string, c *community) error {
	if m.store == nil {
		return nil
	}
	records := make([]Record, 0, len(c.records))
	for _, record := range c.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Player < records[j].Player })
	if err := m.store.SaveRoster(ctx, communityID, records); err != nil {
		return fmt.Errorf("saving roster for community %s: %w", communityID, err)
	}
	return nil
}
