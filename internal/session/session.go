// Package session owns the client-synchronized live view: one owner's
// bookmark collection kept consistent across the initial snapshot, the
// change feed, and local create/delete actions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/collection"
	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/feed"
	"github.com/smartbookmark/bookmarkd/internal/logger"
)

// Store is the slice of the persistence backend a session needs.
type Store interface {
	Save(ctx context.Context, b *domain.Bookmark) error
	Delete(ctx context.Context, ownerID, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Bookmark, error)
}

// Session is one owner's live view for the lifetime of a connection.
//
// It seeds its collection from the snapshot, folds feed events into it
// until closed, and coordinates create/delete actions against the
// backend. A session whose subscription failed keeps serving the
// last-known snapshot ("degraded") instead of crashing the host view.
type Session struct {
	owner  domain.User
	store  Store
	feed   feed.Feed
	logger logger.Logger

	coll *collection.Collection
	sub  *feed.Subscription // nil when degraded to snapshot-only

	changes chan domain.Change // applied changes, for live consumers

	mu         sync.Mutex
	lastActive time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// Open fetches the owner's snapshot, seeds the collection and opens the
// change subscription. A subscription failure is non-fatal: the session
// comes up degraded and logs the reason.
func Open(ctx context.Context, owner domain.User, store Store, f feed.Feed, log logger.Logger) (*Session, error) {
	snapshot, err := store.ListByOwner(ctx, owner.ID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list", Err: err}
	}

	coll := collection.New(owner.ID)
	coll.Init(snapshot)

	s := &Session{
		owner:      owner,
		store:      store,
		feed:       f,
		logger:     log,
		coll:       coll,
		changes:    make(chan domain.Change, 64),
		lastActive: time.Now(),
		done:       make(chan struct{}),
	}

	sub, err := f.Subscribe(ctx, owner.ID)
	if err != nil {
		log.Warn("change feed unavailable, session degraded to snapshot only",
			logger.String("owner_id", owner.ID),
			logger.Error(err))
	} else {
		s.sub = sub
		go s.run()
	}

	return s, nil
}

// Owner returns the authenticated user the session is scoped to.
func (s *Session) Owner() domain.User { return s.owner }

// Degraded reports whether the session is running without a live feed.
func (s *Session) Degraded() bool { return s.sub == nil }

// Bookmarks returns the current ordered view of the collection.
func (s *Session) Bookmarks() []*domain.Bookmark {
	return s.coll.Items()
}

// Changes streams every change applied to the collection, in apply
// order. The channel is never closed; consumers should also select on
// Done.
func (s *Session) Changes() <-chan domain.Change { return s.changes }

// Done is closed when the session has been torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Create validates and persists a new bookmark for the session owner.
// The row is inserted optimistically into the local collection; the
// feed's own INSERT echo is absorbed by the dedup rule.
func (s *Session) Create(ctx context.Context, rawURL, rawTitle string) (*domain.Bookmark, error) {
	s.touch()

	b, err := CreateBookmark(ctx, s.store, s.feed, s.logger, s.owner, rawURL, rawTitle)
	if err != nil {
		return nil, err
	}

	s.applyLocal(domain.InsertChange(b))
	return b, nil
}

// Delete removes a bookmark from the backend, then from the local
// collection. On backend failure the local entry is kept, so the view
// never drifts ahead of durable state. Deleting a row that is already
// gone succeeds (another session won the race) and still converges
// the local state.
func (s *Session) Delete(ctx context.Context, id string) error {
	s.touch()

	if _, err := DeleteBookmark(ctx, s.store, s.feed, s.logger, s.owner.ID, id); err != nil {
		return err
	}

	s.applyLocal(domain.DeleteChange(id, s.owner.ID))
	return nil
}

// Close tears the session down: the subscription is released and the
// event loop stops. Idempotent and safe to call mid-event.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.sub != nil {
			s.sub.Close()
		}
	})
}

// IdleFor reports how long ago the session last saw activity.
func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActive)
}

// Touch marks the session active, deferring the idle reaper. The
// stream transport calls it while the peer is still connected.
func (s *Session) Touch() {
	s.touch()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// run folds feed events into the collection until the session or the
// subscription is torn down.
func (s *Session) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.sub.Done():
			s.logger.Warn("change feed dropped, session degraded to last-known state",
				logger.String("owner_id", s.owner.ID))
			return
		case ev := <-s.sub.Events():
			if ev.Owner() != s.owner.ID {
				// The channel is owner-filtered at the source; anything
				// else reaching us is a bug upstream. Drop it.
				s.logger.Warn("dropping change event for foreign owner",
					logger.String("owner_id", s.owner.ID),
					logger.String("event_owner", ev.Owner()))
				continue
			}
			s.touch()
			s.applyLocal(ev)
		}
	}
}

// applyLocal is the single mutation entry point: fold into the
// collection, then fan out to live consumers.
func (s *Session) applyLocal(ev domain.Change) {
	s.coll.Apply(ev)
	select {
	case s.changes <- ev:
	case <-s.done:
	default:
		// Consumer fell behind; it re-syncs from Bookmarks() anyway.
	}
}
