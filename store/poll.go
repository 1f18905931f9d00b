// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/ballot-box/models"
)

// DefaultPollInterval is how often polling subscriptions re-read the vote
// list when the backend has no push channel.
const DefaultPollInterval = 2 * time.Second

// VotePoller implements SubscribeVotes for backends that can only poll (SQL
// and REST). Each subscription runs its own loop: the first read marks the
// votes that already exist as seen, later reads deliver every unseen vote.
// Votes are insert-only, so a seen-id set makes delivery exactly-once per
// subscription regardless of listing order.
type VotePoller struct {
	list     func(ctx context.Context, electionID string) ([]models.Vote, error)
	interval time.Duration

	mu     sync.Mutex
	closed bool
	stops  map[chan struct{}]struct{}
}

// NewVotePoller builds a poller over a vote-listing function. A non-positive
// interval selects DefaultPollInterval.
func NewVotePoller(list func(ctx context.Context, electionID string) ([]models.Vote, error), interval time.Duration) *VotePoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &VotePoller{
		list:     list,
		interval: interval,
		stops:    make(map[chan struct{}]struct{}),
	}
}

// Subscribe starts a polling loop for one election and returns its release.
func (p *VotePoller) Subscribe(electionID string, fn func(models.Vote)) func() {
	stop := make(chan struct{})

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return func() {}
	}
	p.stops[stop] = struct{}{}
	p.mu.Unlock()

	go p.run(electionID, fn, stop)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if _, active := p.stops[stop]; active {
			delete(p.stops, stop)
			close(stop)
		}
	}
}

// Close stops every active subscription and rejects new ones.
func (p *VotePoller) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for stop := range p.stops {
		close(stop)
	}
	p.stops = make(map[chan struct{}]struct{})
}

func (p *VotePoller) run(electionID string, fn func(models.Vote), stop chan struct{}) {
	seen := make(map[string]struct{})

	// Baseline read: rows that predate the subscription are not deliveries
	p.scan(electionID, seen, nil)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.scan(electionID, seen, fn)
		}
	}
}

// scan reads the vote list and invokes fn for unseen votes, oldest first.
// A failed read skips this tick; the loop keeps going.
func (p *VotePoller) scan(electionID string, seen map[string]struct{}, fn func(models.Vote)) {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	votes, err := p.list(ctx, electionID)
	cancel()
	if err != nil {
		slog.Debug("vote poll failed", "election_id", electionID, "error", err)
		return
	}
	for _, v := range votes {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		if fn != nil {
			fn(v)
		}
	}
}
