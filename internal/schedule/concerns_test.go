package schedule

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

type fakePlatform struct {
	announcements []string
	grants        []string
	revokes       []string
	failGrant     bool
	failRevoke    bool
}

func (f *fakePlatform) SendAnnouncement(ctx context.Context, channelID, content, mentionRole string) error {
	f.announcements = append(f.announcements, content)
	return nil
}

func (f *fakePlatform) GrantRole(ctx context.Context, communityID, player, roleID string) error {
	if f.failGrant {
		return fmt.Errorf("grant refused")
	}
	f.grants = append(f.grants, player)
	return nil
}

func (f *fakePlatform) RevokeRole(ctx context.Context, communityID, player, roleID string) error {
	if f.failRevoke {
		return fmt.Errorf("revoke refused")
	}
	f.revokes = append(f.revokes, player)
	return nil
}

var testDefaults = roster.Defaults{ScrimTime: "7:00 PM", Timezone: "America/New_York"}

func signUp(t *testing.T, manager *roster.Manager, communityID string, count int, days ...roster.Weekday) {
	t.Helper()
	for i := 0; i < count; i++ {
		player := fmt.Sprintf("p%d", i)
		if _, err := manager.SetAvailability(context.Background(), communityID, player, player, days, roster.TeamNone); err != nil {
			t.Fatalf("SetAvailability: %v", err)
		}
	}
}

func TestScrimReminderFiresOncePerDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	manager := roster.NewManager(testDefaults, nil, nil)
	manager.Ensure("g1")
	if err := manager.SetAnnouncementChannel(ctx, "g1", "chan"); err != nil {
		t.Fatal(err)
	}
	signUp(t, manager, "g1", 10, roster.Wednesday)

	platform := &fakePlatform{}
	reminder := &scrimReminder{communityID: "g1", manager: manager, platform: platform}

	// Wednesday March 5th 2025, scrim at 19:00, reminder window opens 18:30
	early := time.Date(2025, 3, 5, 18, 29, 0, 0, loc)
	reminder.fire(ctx, early)
	if len(platform.announcements) != 0 {
		t.Fatalf("reminder fired before the window, got %v", platform.announcements)
	}

	boundary := time.Date(2025, 3, 5, 18, 30, 0, 0, loc)
	if next := reminder.next(boundary); !next.Equal(boundary) {
		t.Errorf("inside the window next() should be due right away, got %v", next)
	}
	reminder.fire(ctx, boundary)
	if len(platform.announcements) != 1 {
		t.Fatalf("expected one reminder at the boundary, got %d", len(platform.announcements))
	}
	if !strings.Contains(platform.announcements[0], "30 minutes") {
		t.Errorf("unexpected reminder content %q", platform.announcements[0])
	}

	// Polling every minute through and past the scrim start must not repeat it
	for minute := 1; minute <= 90; minute++ {
		reminder.fire(ctx, boundary.Add(time.Duration(minute)*time.Minute))
	}
	if len(platform.announcements) != 1 {
		t.Fatalf("reminder repeated, got %d announcements", len(platform.announcements))
	}

	after := time.Date(2025, 3, 5, 20, 0, 0, 0, loc)
	if next := reminder.next(after); !next.After(after) {
		t.Errorf("after firing the next occurrence must be in the future, got %v", next)
	}
}

func TestScrimReminderSuppressedWhenShortOnPlayers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	manager := roster.NewManager(testDefaults, nil, nil)
	manager.Ensure("g1")
	if err := manager.SetAnnouncementChannel(ctx, "g1", "chan"); err != nil {
		t.Fatal(err)
	}
	signUp(t, manager, "g1", 5, roster.Wednesday)

	platform := &fakePlatform{}
	reminder := &scrimReminder{communityID: "g1", manager: manager, platform: platform}
	boundary := time.Date(2025, 3, 5, 18, 30, 0, 0, loc)
	reminder.fire(ctx, boundary)
	if len(platform.announcements) != 0 {
		t.Fatalf("five players must not trigger a scrim reminder, got %v", platform.announcements)
	}

	// The occurrence is consumed: players joining afterwards do not
	// resurrect today's reminder
	signUp(t, manager, "g1", 10, roster.Wednesday)
	reminder.fire(ctx, boundary.Add(10*time.Minute))
	if len(platform.announcements) != 0 {
		t.Fatalf("occurrence was already handled, got %v", platform.announcements)
	}
}

func TestScrimReminderCrossesMidnight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	manager := roster.NewManager(testDefaults, nil, nil)
	manager.Ensure("g1")
	if err := manager.SetAnnouncementChannel(ctx, "g1", "chan"); err != nil {
		t.Fatal(err)
	}
	if err := manager.SetScrimTime(ctx, "g1", roster.Thursday, roster.ScrimSlot{Time: "00:10", Timezone: "America/New_York"}); err != nil {
		t.Fatal(err)
	}
	signUp(t, manager, "g1", 10, roster.Thursday)

	platform := &fakePlatform{}
	reminder := &scrimReminder{communityID: "g1", manager: manager, platform: platform}

	// Thursday 00:10 scrim means a Wednesday 23:40 reminder
	wednesdayNight := time.Date(2025, 3, 5, 23, 40, 0, 0, loc)
	reminder.fire(ctx, wednesdayNight)
	if len(platform.announcements) != 1 {
		t.Fatalf("expected the reminder on the previous evening, got %d", len(platform.announcements))
	}
}

func TestScrimReminderWithoutChannelStaysQuiet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	manager := roster.NewManager(testDefaults, nil, nil)
	manager.Ensure("g1")
	signUp(t, manager, "g1", 10, roster.Wednesday)

	platform := &fakePlatform{}
	reminder := &scrimReminder{communityID: "g1", manager: manager, platform: platform}
	reminder.fire(ctx, time.Date(2025, 3, 5, 18, 30, 0, 0, loc))
	if len(platform.announcements) != 0 {
		t.Fatalf("no channel configured, got %v", platform.announcements)
	}
}

func TestDailyRoleSync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	defaults := testDefaults
	defaults.AvailableRole = "avail"
	manager := roster.NewManager(defaults, nil, nil)
	manager.Ensure("g1")
	if _, err := manager.SetAvailability(ctx, "g1", "p1", "Ana", []roster.Weekday{roster.Wednesday}, roster.TeamNone); err != nil {
		t.Fatal(err)
	}
	if _, err := manager.SetAvailability(ctx, "g1", "p2", "Mia", []roster.Weekday{roster.Thursday}, roster.TeamNone); err != nil {
		t.Fatal(err)
	}

	platform := &fakePlatform{}
	sync := &dailyRoleSync{communityID: "g1", manager: manager, platform: platform}

	// Wednesday: Ana gets the role
	sync.fire(ctx, time.Date(2025, 3, 5, 0, 5, 0, 0, loc))
	if len(platform.grants) != 1 || platform.grants[0] != "p1" {
		t.Fatalf("grants = %v, want [p1]", platform.grants)
	}

	// A second run on the same day does nothing
	sync.fire(ctx, time.Date(2025, 3, 5, 12, 0, 0, 0, loc))
	if len(platform.grants) != 1 || len(platform.revokes) != 0 {
		t.Fatalf("same-day rerun must be a no-op, grants=%v revokes=%v", platform.grants, platform.revokes)
	}

	// Thursday: Mia gets it, Ana loses it
	sync.fire(ctx, time.Date(2025, 3, 6, 0, 5, 0, 0, loc))
	if len(platform.grants) != 2 || platform.grants[1] != "p2" {
		t.Fatalf("grants = %v, want [p1 p2]", platform.grants)
	}
	if len(platform.revokes) != 1 || platform.revokes[0] != "p1" {
		t.Fatalf("revokes = %v, want [p1]", platform.revokes)
	}

	// Friday: the revoke of Mia fails, so it is retried on Saturday
	platform.failRevoke = true
	sync.fire(ctx, time.Date(2025, 3, 7, 0, 5, 0, 0, loc))
	platform.failRevoke = false
	sync.fire(ctx, time.Date(2025, 3, 8, 0, 5, 0, 0, loc))
	if len(platform.revokes) != 2 || platform.revokes[1] != "p2" {
		t.Fatalf("failed revoke was not retried, revokes = %v", platform.revokes)
	}
}

func TestDailyRoleSyncWithoutRole(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	manager := roster.NewManager(testDefaults, nil, nil)
	manager.Ensure("g1")
	signUp(t, manager, "g1", 3, roster.Wednesday)

	platform := &fakePlatform{}
	sync := &dailyRoleSync{communityID: "g1", manager: manager, platform: platform}
	sync.fire(ctx, time.Date(2025, 3, 5, 0, 5, 0, 0, loc))
	if len(platform.grants) != 0 {
		t.Fatalf("no role configured, grants = %v", platform.grants)
	}
}

func TestWeeklyReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	manager := roster.NewManager(testDefaults, nil, nil)
	manager.Ensure("g1")
	if err := manager.SetAnnouncementChannel(ctx, "g1", "chan"); err != nil {
		t.Fatal(err)
	}
	signUp(t, manager, "g1", 4, roster.Saturday)

	platform := &fakePlatform{}
	reset := &weeklyReset{communityID: "g1", manager: manager, platform: platform}

	// Default cadence is Monday 08:00; March 10th 2025 is a Monday
	sunday := time.Date(2025, 3, 9, 23, 59, 0, 0, loc)
	if next := reset.next(sunday); !next.Equal(time.Date(2025, 3, 10, 8, 0, 0, 0, loc)) {
		t.Errorf("next = %v, want Monday 08:00", next)
	}
	reset.fire(ctx, sunday)
	reset.fire(ctx, time.Date(2025, 3, 10, 7, 59, 0, 0, loc))
	if got := manager.ListAvailableOn("g1", roster.Saturday); len(got) != 4 {
		t.Fatalf("reset ran early, %d players left", len(got))
	}

	reset.fire(ctx, time.Date(2025, 3, 10, 8, 1, 0, 0, loc))
	if got := manager.ListAvailableOn("g1", roster.Saturday); len(got) != 0 {
		t.Fatalf("reset did not run, %d players left", len(got))
	}
	if len(platform.announcements) != 1 {
		t.Fatalf("expected one reset notice, got %d", len(platform.announcements))
	}

	// Later the same day nothing more happens
	reset.fire(ctx, time.Date(2025, 3, 10, 9, 0, 0, 0, loc))
	if len(platform.announcements) != 1 {
		t.Fatalf("reset repeated, got %d notices", len(platform.announcements))
	}

	// And the next occurrence is a week out
	after := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	if next := reset.next(after); !next.Equal(time.Date(2025, 3, 17, 8, 0, 0, 0, loc)) {
		t.Errorf("next after firing = %v, want March 17th 08:00", next)
	}
}

func TestWeeklyResetCustomRule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	loc := newYork(t)
	manager := roster.NewManager(testDefaults, nil, nil)
	manager.Ensure("g1")
	if err := manager.SetAutoReset(ctx, "g1", roster.ResetRule{Day: roster.Sunday, Hour: 22}); err != nil {
		t.Fatal(err)
	}
	signUp(t, manager, "g1", 2, roster.Friday)

	platform := &fakePlatform{}
	reset := &weeklyReset{communityID: "g1", manager: manager, platform: platform}
	reset.fire(ctx, time.Date(2025, 3, 9, 22, 30, 0, 0, loc))
	if got := manager.ListAvailableOn("g1", roster.Friday); len(got) != 0 {
		t.Fatalf("custom rule did not apply, %d players left", len(got))
	}
}
