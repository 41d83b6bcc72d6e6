package collection

import (
	"testing"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

func bm(id, owner, url, title string) *domain.Bookmark {
	return &domain.Bookmark{
		ID:        id,
		OwnerID:   owner,
		URL:       url,
		Title:     title,
		CreatedAt: time.Now(),
	}
}

func ids(items []*domain.Bookmark) []string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return out
}

func assertOrder(t *testing.T, items []*domain.Bookmark, want ...string) {
	t.Helper()
	got := ids(items)
	if len(got) != len(want) {
		t.Fatalf("collection has %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collection order = %v, want %v", got, want)
		}
	}
}

func TestNewCollectionIsEmpty(t *testing.T) {
	c := New("u1")
	if c.Len() != 0 {
		t.Errorf("New() should start empty, got %d items", c.Len())
	}
}

func TestInitSeedsSnapshot(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{
		bm("2", "u1", "https://b.com", "B"),
		bm("1", "u1", "https://a.com", "A"),
	})
	assertOrder(t, c.Items(), "2", "1")
}

func TestInitDropsForeignRows(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{
		bm("1", "u1", "https://a.com", "A"),
		bm("2", "u2", "https://b.com", "B"),
	})
	assertOrder(t, c.Items(), "1")
}

func TestApplyInsertPrepends(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{
		bm("b", "u1", "https://b.com", "B"),
		bm("c", "u1", "https://c.com", "C"),
	})

	c.Apply(domain.InsertChange(bm("a", "u1", "https://a.com", "A")))

	assertOrder(t, c.Items(), "a", "b", "c")
}

func TestApplyInsertDedupsExistingID(t *testing.T) {
	c := New("u1")
	existing := bm("1", "u1", "https://a.com", "original title")
	c.Init([]*domain.Bookmark{existing})

	// Channel echo of an insert the session already has: dropped,
	// the existing entry's attributes win.
	c.Apply(domain.InsertChange(bm("1", "u1", "https://a.com", "echoed title")))

	items := c.Items()
	assertOrder(t, items, "1")
	if items[0].Title != "original title" {
		t.Errorf("dedup kept the incoming row, title = %q, want %q", items[0].Title, "original title")
	}
}

func TestApplyDeleteRemovesAndPreservesOrder(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{
		bm("a", "u1", "https://a.com", "A"),
		bm("b", "u1", "https://b.com", "B"),
		bm("c", "u1", "https://c.com", "C"),
	})

	c.Apply(domain.DeleteChange("b", "u1"))

	assertOrder(t, c.Items(), "a", "c")
}

func TestApplyDeleteIsIdempotent(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{bm("a", "u1", "https://a.com", "A")})

	c.Apply(domain.DeleteChange("missing", "u1"))
	assertOrder(t, c.Items(), "a")

	c.Apply(domain.DeleteChange("a", "u1"))
	c.Apply(domain.DeleteChange("a", "u1"))
	assertOrder(t, c.Items())
}

func TestApplyUpdateReplacesRow(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{
		bm("a", "u1", "https://a.com", "old"),
		bm("b", "u1", "https://b.com", "B"),
	})

	c.Apply(domain.UpdateChange(bm("a", "u1", "https://a.com", "new")))

	items := c.Items()
	assertOrder(t, items, "a", "b")
	if items[0].Title != "new" {
		t.Errorf("update did not replace row, title = %q, want %q", items[0].Title, "new")
	}
}

func TestApplyUpdateNoOpOnMiss(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{bm("a", "u1", "https://a.com", "A")})

	c.Apply(domain.UpdateChange(bm("ghost", "u1", "https://g.com", "G")))

	assertOrder(t, c.Items(), "a")
}

func TestApplyUnknownKindNoOp(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{bm("a", "u1", "https://a.com", "A")})

	c.Apply(domain.Change{Type: "TRUNCATE", New: bm("x", "u1", "https://x.com", "X")})

	assertOrder(t, c.Items(), "a")
}

func TestApplyDropsForeignOwnerEvents(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{bm("a", "u1", "https://a.com", "A")})

	// Defense in depth: even if the channel misdelivers another
	// owner's events, nothing in this collection changes.
	c.Apply(domain.InsertChange(bm("x", "u2", "https://x.com", "X")))
	c.Apply(domain.DeleteChange("a", "u2"))

	assertOrder(t, c.Items(), "a")
}

func TestLocalRemovalRacesFeedEcho(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{
		bm("a", "u1", "https://a.com", "A"),
		bm("b", "u1", "https://b.com", "B"),
	})

	// The UI-triggered removal and the channel's own DELETE echo both
	// land; the second application must be a harmless no-op.
	c.Apply(domain.DeleteChange("a", "u1"))
	c.Apply(domain.DeleteChange("a", "u1"))
	assertOrder(t, c.Items(), "b")
}

func TestEndToEndScenario(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	c := New("u1")
	c.Init([]*domain.Bookmark{
		{ID: "1", OwnerID: "u1", URL: "https://a.com", Title: "A", CreatedAt: t1},
	})

	c.Apply(domain.InsertChange(&domain.Bookmark{
		ID: "2", OwnerID: "u1", URL: "https://b.com", Title: "B", CreatedAt: t2,
	}))
	assertOrder(t, c.Items(), "2", "1")

	c.Apply(domain.DeleteChange("1", "u1"))
	assertOrder(t, c.Items(), "2")

	c.Apply(domain.DeleteChange("1", "u1"))
	assertOrder(t, c.Items(), "2")
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New("u1")
	c.Init([]*domain.Bookmark{
		bm("a", "u1", "https://a.com", "A"),
		bm("b", "u1", "https://b.com", "B"),
	})

	items := c.Items()
	items[0] = items[1]

	assertOrder(t, c.Items(), "a", "b")
}
