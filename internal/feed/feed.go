// Package feed is the change-subscription channel: one logical
// subscription per owner, delivering that owner's row changes in the
// order the backend records them, until explicitly torn down.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

// defaultBuffer is how many undelivered events a subscription holds
// before publishers block.
const defaultBuffer = 64

var errEmptyOwner = errors.New("empty owner id")

// Feed is the subscribe-with-filter primitive over the bookmarks table.
type Feed interface {
	// Subscribe opens one subscription scoped to ownerID. The caller
	// owns the returned handle and must Close it.
	Subscribe(ctx context.Context, ownerID string) (*Subscription, error)

	// Publish emits one change event to every open subscription of the
	// change's owner.
	Publish(ctx context.Context, ev domain.Change) error
}

// Subscription is one open per-owner change stream.
//
// Consumers select on Events() and Done(). Close is idempotent and safe
// to call at any time, including while an event is mid-flight; events
// delivered after Close are dropped.
type Subscription struct {
	ownerID   string
	events    chan domain.Change
	done      chan struct{}
	stop      func() // releases the underlying transport, set by the feed impl
	closeOnce sync.Once
}

func newSubscription(ownerID string, buffer int, stop func()) *Subscription {
	return &Subscription{
		ownerID: ownerID,
		events:  make(chan domain.Change, buffer),
		done:    make(chan struct{}),
		stop:    stop,
	}
}

// OwnerID returns the owner the subscription is filtered to.
func (s *Subscription) OwnerID() string { return s.ownerID }

// Events is the ordered stream of change events for the owner.
func (s *Subscription) Events() <-chan domain.Change { return s.events }

// Done is closed when the subscription has been torn down.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close stops delivery and releases the underlying connection.
// Closing an already-closed handle is a no-op.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
}

// deliver hands one event to the consumer, blocking until it is taken
// or the subscription is closed. Returns false once closed.
func (s *Subscription) deliver(ev domain.Change) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}
