package app

import (
	"sync"

	"exam-prep-service/internal/domain"
)

// LeaderboardHub fans out leaderboard snapshots to live subscribers of a contest.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{subscribers: make(map[string]map[chan domain.Leaderboard]struct{})}
}

// subscribe registers a buffered channel for contestID, seeded with initial.
// The cancel func closes the channel and is safe to call more than once.
func (h *LeaderboardHub) subscribe(contestID string, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	h.mu.Lock()
	subs, ok := h.subscribers[contestID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		h.subscribers[contestID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.subscribers[contestID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, contestID)
		}
	}
	return ch, cancel
}

// publish delivers lb to every subscriber of its contest. A full subscriber
// loses its oldest pending snapshot instead of blocking the publisher.
func (h *LeaderboardHub) publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[lb.ContestID] {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (h *LeaderboardHub) subscriberCount(contestID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[contestID])
}
