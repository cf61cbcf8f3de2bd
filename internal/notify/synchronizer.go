// Package notify reconciles an actor's view of outstanding requests and
// tickets against the backing store on a recurring pull, surfacing
// new-since-last-poll items without re-alerting on unchanged ones.
package notify

import (
	"context"
	"log"
	"time"
)

// Notice is one outstanding item as the synchronizer reports it.
type Notice struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Update is what a poll produces: the full outstanding count plus only
// the items not seen on a previous poll.
type Update struct {
	Total int
	New   []Notice
}

// FetchFunc pulls the actor's current outstanding items from the store.
type FetchFunc func(ctx context.Context) ([]Notice, error)

// Synchronizer runs one cancellable poll loop per actor session. It never
// mutates anything beyond its own last-seen bookkeeping, and a failed poll
// is swallowed and retried on the next tick.
type Synchronizer struct {
	fetch    FetchFunc
	interval time.Duration
	onUpdate func(Update)

	seen   map[string]struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a synchronizer polling at the given interval. onUpdate is
// invoked from the poll goroutine after every successful poll.
func New(fetch FetchFunc, interval time.Duration, onUpdate func(Update)) *Synchronizer {
	return &Synchronizer{
		fetch:    fetch,
		interval: interval,
		onUpdate: onUpdate,
		seen:     map[string]struct{}{},
	}
}

// Start launches the poll loop. It returns immediately; the loop runs
// until Stop is called or the parent context is cancelled.
func (s *Synchronizer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// First reconciliation straight away so a fresh session sees its
		// backlog without waiting a full interval.
		s.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.poll(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit. Safe to call once after
// Start, e.g. on logout.
func (s *Synchronizer) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Poll runs a single reconciliation outside the loop. Exposed for callers
// that want an immediate refresh.
func (s *Synchronizer) Poll(ctx context.Context) {
	s.poll(ctx)
}

func (s *Synchronizer) poll(ctx context.Context) {
	items, err := s.fetch(ctx)
	if err != nil {
		// Swallowed: the next tick retries. Never propagates to the
		// caller's rendering path.
		log.Printf("notify: poll failed, will retry: %v", err)
		return
	}

	update := Update{Total: len(items)}
	for _, item := range items {
		if _, ok := s.seen[item.ID]; ok {
			continue
		}
		s.seen[item.ID] = struct{}{}
		update.New = append(update.New, item)
	}

	if s.onUpdate != nil {
		s.onUpdate(update)
	}
}
