package schedule

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/KhaledO7/Discordbot/internal/roster"
)

// Platform is what the scheduler needs from the chat platform. Every call
// must come back in bounded time; the scheduler wraps each fire in a
// timeout context
type Platform interface {
	SendAnnouncement(ctx context.Context, channelID string, content string, mentionRole string) error
	GrantRole(ctx context.Context, communityID string, player string, roleID string) error
	RevokeRole(ctx context.Context, communityID string, player string, roleID string) error
}

const defaultFireTimeout = 30 * time.Second

// idle is how long to sleep when no community is registered yet
const idle = time.Minute

type entry struct {
	at time.Time
	c  concern
}

// timerHeap orders pending fires by instant, soonest first
type timerHeap []*entry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x interface{}) { *h = append(*h, x.(*entry)) }
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Scheduler drives the three periodic concerns of every community: the
// scrim reminder, the daily role sync and the weekly reset. One goroutine
// sleeps until the soonest pending fire, runs it, and reschedules it.
// A failing fire never takes the loop down with it
type Scheduler struct {
	mu       sync.Mutex
	manager  *roster.Manager
	platform Platform
	pending  timerHeap
	tracked  map[string]bool
	wake     chan struct{}

	// now is replaceable so tests can drive the clock
	now         func() time.Time
	fireTimeout time.Duration
}

func NewScheduler(manager *roster.Manager, platform Platform) *Scheduler {
	return &Scheduler{
		manager:     manager,
		platform:    platform,
		tracked:     map[string]bool{},
		wake:        make(chan struct{}, 1),
		now:         time.Now,
		fireTimeout: defaultFireTimeout,
	}
}

// Add registers a community's concerns. Safe to call for a community that
// is already registered; it then does nothing
func (s *Scheduler) Add(communityID string) {
	s.mu.Lock()
	if s.tracked[communityID] {
		s.mu.Unlock()
		return
	}
	s.tracked[communityID] = true
	now := s.now()
	concerns := []concern{
		&scrimReminder{communityID: communityID, manager: s.manager, platform: s.platform},
		&dailyRoleSync{communityID: communityID, manager: s.manager, platform: s.platform},
		&weeklyReset{communityID: communityID, manager: s.manager, platform: s.platform},
	}
	for _, c := range concerns {
		heap.Push(&s.pending, &entry{at: c.next(now), c: c})
	}
	s.mu.Unlock()
	s.kick()
	log.Info().Msg(fmt.Sprintf("Scheduler now tracking community %s", communityID))
}

// Remove cancels a community's pending fires. A fire that is currently
// running completes; nothing for the community starts after Remove returns
func (s *Scheduler) Remove(communityID string) {
	s.mu.Lock()
	delete(s.tracked, communityID)
	kept := timerHeap{}
	for _, e := range s.pending {
		if e.c.community() != communityID {
			kept = append(kept, e)
		}
	}
	heap.Init(&kept)
	s.pending = kept
	s.mu.Unlock()
	s.kick()
}

// Kick recomputes every pending fire instant. Call after a configuration
// change so a new scrim time or reset cadence takes effect right away
func (s *Scheduler) Kick() {
	s.mu.Lock()
	now := s.now()
	for _, e := range s.pending {
		e.at = e.c.next(now)
	}
	heap.Init(&s.pending)
	s.mu.Unlock()
	s.kick()
}

func (s *Scheduler) kick() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run blocks until the context is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Msg("Scheduler started")
	for {
		wait := s.untilNext()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("Scheduler stopped")
			return
		case <-s.wake:
			timer.Stop()
		case <-timer.C:
		}
		s.fireDue(ctx)
	}
}

func (s *Scheduler) untilNext() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return idle
	}
	wait := s.pending[0].at.Sub(s.now())
	if wait < 0 {
		return 0
	}
	return wait
}

// fireDue runs every pending concern whose instant has arrived, then
// schedules its next occurrence
func (s *Scheduler) fireDue(ctx context.Context) {
	for {
		s.mu.Lock()
		now := s.now()
		if len(s.pending) == 0 || s.pending[0].at.After(now) {
			s.mu.Unlock()
			return
		}
		e := heap.Pop(&s.pending).(*entry)
		s.mu.Unlock()

		// fire without holding the lock so Add/Remove never wait on a
		// platform call
		s.fireOne(ctx, e.c, now)

		s.mu.Lock()
		if s.tracked[e.c.community()] {
			e.at = e.c.next(s.now())
			heap.Push(&s.pending, e)
		}
		s.mu.Unlock()
	}
}

// fireOne runs a single concern, shielded so a panic or a slow platform
// call cannot break the other communities' timers
func (s *Scheduler) fireOne(ctx context.Context, c concern, now time.Time) {
	fireID := uuid.New()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msg(fmt.Sprintf("Recovered panic in %s for community %s (fire %s): %v", c.name(), c.community(), fireID, r))
		}
	}()
	log.Debug().Msg(fmt.Sprintf("Firing %s for community %s (fire %s)", c.name(), c.community(), fireID))
	fireCtx, cancel := context.WithTimeout(ctx, s.fireTimeout)
	defer cancel()
	c.fire(fireCtx, now)
}
