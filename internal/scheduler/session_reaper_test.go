package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/feed"
	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/session"
)

func TestSessionReaper_ReapClosesIdleSessions(t *testing.T) {
	log := logger.New("error", false)
	hub := session.NewHub()
	f := feed.NewMemory()
	store := newFakeSeedStore()

	s, err := session.Open(context.Background(), domain.User{ID: "user-1"}, sessionStore{store}, f, log)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	hub.Register(s)

	sr := NewSessionReaper(hub, log, time.Hour, time.Nanosecond)

	// Freshly opened sessions still count as active until the TTL
	// elapses; a nanosecond TTL elapses immediately.
	time.Sleep(time.Millisecond)
	sr.reap()

	if hub.Len() != 0 {
		t.Fatalf("Expected 0 sessions after reap, got %d", hub.Len())
	}

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("Reaped session was not closed")
	}
}

func TestSessionReaper_ReapKeepsActiveSessions(t *testing.T) {
	log := logger.New("error", false)
	hub := session.NewHub()
	f := feed.NewMemory()
	store := newFakeSeedStore()

	s, err := session.Open(context.Background(), domain.User{ID: "user-1"}, sessionStore{store}, f, log)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()
	hub.Register(s)

	sr := NewSessionReaper(hub, log, time.Hour, time.Hour)
	sr.reap()

	if hub.Len() != 1 {
		t.Fatalf("Expected 1 session after reap, got %d", hub.Len())
	}
}

// sessionStore widens fakeSeedStore to the session.Store surface.
type sessionStore struct {
	*fakeSeedStore
}

func (s sessionStore) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok || b.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s sessionStore) ListByOwner(_ context.Context, ownerID string) ([]*domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Bookmark
	for _, b := range s.rows {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}
