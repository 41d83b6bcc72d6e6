package feed

import (
	"context"
	"sync"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

// Memory is an in-process Feed for tests and single-node runs.
// It lets a scripted sequence of events be fed to the reconciler
// without any network dependency.
type Memory struct {
	mu   sync.Mutex
	subs map[string][]*Subscription // ownerID -> open subscriptions
}

// NewMemory creates an empty in-process feed.
func NewMemory() *Memory {
	return &Memory{subs: make(map[string][]*Subscription)}
}

// Subscribe opens an in-process subscription for ownerID.
func (m *Memory) Subscribe(ctx context.Context, ownerID string) (*Subscription, error) {
	if ownerID == "" {
		return nil, &domain.SubscriptionError{OwnerID: ownerID, Err: errEmptyOwner}
	}

	var sub *Subscription
	sub = newSubscription(ownerID, defaultBuffer, func() {
		m.drop(ownerID, sub)
	})

	m.mu.Lock()
	m.subs[ownerID] = append(m.subs[ownerID], sub)
	m.mu.Unlock()

	return sub, nil
}

// Publish delivers ev to every open subscription of the event's owner.
// Delivery into a closed subscription is silently dropped.
func (m *Memory) Publish(ctx context.Context, ev domain.Change) error {
	owner := ev.Owner()
	if owner == "" {
		return &domain.PersistenceError{Op: "publish", Err: errEmptyOwner}
	}

	m.mu.Lock()
	subs := make([]*Subscription, len(m.subs[owner]))
	copy(subs, m.subs[owner])
	m.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(ev)
	}
	return nil
}

func (m *Memory) drop(ownerID string, sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()

	open := m.subs[ownerID]
	for i, s := range open {
		if s == sub {
			m.subs[ownerID] = append(open[:i], open[i+1:]...)
			break
		}
	}
	if len(m.subs[ownerID]) == 0 {
		delete(m.subs, ownerID)
	}
}

// OpenCount reports how many subscriptions are open for ownerID.
func (m *Memory) OpenCount(ownerID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[ownerID])
}
