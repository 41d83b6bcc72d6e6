package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/feed"
	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/session"
)

// memStore is an in-memory session.Store so the scenario runs without
// a Redis instance.
type memStore struct {
	mu   sync.Mutex
	rows map[string]*domain.Bookmark
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]*domain.Bookmark)}
}

func (s *memStore) Save(_ context.Context, b *domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[b.ID] = b
	return nil
}

func (s *memStore) Delete(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok || b.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func (s *memStore) ListByOwner(_ context.Context, ownerID string) ([]*domain.Bookmark, error) {
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

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func urls(bookmarks []*domain.Bookmark) []string {
	out := make([]string, len(bookmarks))
	for i, b := range bookmarks {
		out[i] = b.URL
	}
	return out
}

// TestLiveViewScenario drives two concurrent sessions for different
// users over one shared store and feed: saves and deletes propagate to
// the owning user's other session while the other user sees nothing.
func TestLiveViewScenario(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", true)
	store := newMemStore()
	f := feed.NewMemory()

	alice := domain.User{ID: "alice", Email: "alice@example.com"}
	bob := domain.User{ID: "bob", Email: "bob@example.com"}

	// Alice has two tabs open, Bob one.
	aliceTab1, err := session.Open(ctx, alice, store, f, log)
	if err != nil {
		t.Fatalf("Open(alice, tab1) failed: %v", err)
	}
	defer aliceTab1.Close()

	aliceTab2, err := session.Open(ctx, alice, store, f, log)
	if err != nil {
		t.Fatalf("Open(alice, tab2) failed: %v", err)
	}
	defer aliceTab2.Close()

	bobTab, err := session.Open(ctx, bob, store, f, log)
	if err != nil {
		t.Fatalf("Open(bob) failed: %v", err)
	}
	defer bobTab.Close()

	// Alice saves a bookmark in tab 1.
	saved, err := aliceTab1.Create(ctx, "https://go.dev", "Go")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Tab 1 shows it immediately (optimistic insert).
	if got := aliceTab1.Bookmarks(); len(got) != 1 || got[0].ID != saved.ID {
		t.Fatalf("tab1 after create = %v, want [%s]", urls(got), saved.URL)
	}

	// Tab 2 converges via the feed.
	waitFor(t, "tab2 to see the insert", func() bool {
		return len(aliceTab2.Bookmarks()) == 1
	})

	// The feed echo back into tab 1 must not duplicate the row.
	waitFor(t, "tab1 echo absorption", func() bool {
		return len(aliceTab1.Bookmarks()) == 1
	})

	// Bob never sees Alice's bookmark.
	if got := bobTab.Bookmarks(); len(got) != 0 {
		t.Fatalf("bob sees %v, want empty", urls(got))
	}

	// A second save lands on top in both tabs.
	second, err := aliceTab2.Create(ctx, "https://pkg.go.dev", "Packages")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	waitFor(t, "both tabs to order newest first", func() bool {
		a, b := aliceTab1.Bookmarks(), aliceTab2.Bookmarks()
		return len(a) == 2 && len(b) == 2 &&
			a[0].ID == second.ID && b[0].ID == second.ID
	})

	// Alice deletes the first bookmark from tab 2.
	if err := aliceTab2.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	waitFor(t, "both tabs to drop the deleted row", func() bool {
		a, b := aliceTab1.Bookmarks(), aliceTab2.Bookmarks()
		return len(a) == 1 && len(b) == 1 &&
			a[0].ID == second.ID && b[0].ID == second.ID
	})

	// Deleting it again is a quiet no-op.
	if err := aliceTab1.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}

	// The store agrees with the views.
	rows, err := store.ListByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != second.ID {
		t.Fatalf("store rows = %v, want [%s]", urls(rows), second.URL)
	}
}

// TestLiveViewSnapshotSeeding verifies a session opened after rows
// already exist starts from the stored snapshot.
func TestLiveViewSnapshotSeeding(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", true)
	store := newMemStore()
	f := feed.NewMemory()

	alice := domain.User{ID: "alice"}

	writer, err := session.Open(ctx, alice, store, f, log)
	if err != nil {
		t.Fatalf("Open(writer) failed: %v", err)
	}
	defer writer.Close()

	if _, err := writer.Create(ctx, "https://go.dev", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := writer.Create(ctx, "https://pkg.go.dev", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	late, err := session.Open(ctx, alice, store, f, log)
	if err != nil {
		t.Fatalf("Open(late) failed: %v", err)
	}
	defer late.Close()

	if got := late.Bookmarks(); len(got) != 2 {
		t.Fatalf("late session sees %v, want 2 rows", urls(got))
	}
}
