package collection

import (
	"sync"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

// Collection holds the session's in-memory ordered view of one owner's
// bookmarks: the initial snapshot folded with every change event the
// feed delivers plus local delete actions.
//
// All mutation goes through a single entry point (Apply), and each step
// builds the next slice before swapping it in under the lock, so a
// reader never observes a half-applied mutation.
type Collection struct {
	mu      sync.RWMutex
	ownerID string
	items   []*domain.Bookmark
}

// New creates an empty collection scoped to the given owner.
func New(ownerID string) *Collection {
	return &Collection{ownerID: ownerID}
}

// Init seeds the collection from the initial snapshot.
// The snapshot is assumed already ordered newest-first by the store.
func (c *Collection) Init(snapshot []*domain.Bookmark) {
	next := make([]*domain.Bookmark, 0, len(snapshot))
	for _, b := range snapshot {
		if b == nil || (c.ownerID != "" && b.OwnerID != c.ownerID) {
			continue
		}
		next = append(next, b)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = next
}

// Apply folds one change event into the collection.
// Events scoped to a different owner are dropped whole, even if the
// channel should never have delivered them.
func (c *Collection) Apply(ev domain.Change) {
	if c.ownerID != "" && ev.Owner() != c.ownerID {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = apply(c.items, ev)
}

// Items returns a copy of the current ordered view.
func (c *Collection) Items() []*domain.Bookmark {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]*domain.Bookmark, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of entries in the collection.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// OwnerID returns the owner the collection is scoped to.
func (c *Collection) OwnerID() string { return c.ownerID }

// apply is the pure transition function (current items, event) -> next items.
// It never mutates the input slice in place.
func apply(items []*domain.Bookmark, ev domain.Change) []*domain.Bookmark {
	switch ev.Type {
	case domain.ChangeInsert:
		if ev.New == nil {
			return items
		}
		// A locally-initiated insert and the channel's echo of it may
		// both arrive; the first wins and the duplicate is dropped.
		for _, b := range items {
			if b.ID == ev.New.ID {
				return items
			}
		}
		next := make([]*domain.Bookmark, 0, len(items)+1)
		next = append(next, ev.New)
		next = append(next, items...)
		return next

	case domain.ChangeDelete:
		if ev.Old == nil {
			return items
		}
		next := make([]*domain.Bookmark, 0, len(items))
		for _, b := range items {
			if b.ID != ev.Old.ID {
				next = append(next, b)
			}
		}
		return next

	case domain.ChangeUpdate:
		if ev.New == nil {
			return items
		}
		replaced := false
		next := make([]*domain.Bookmark, len(items))
		for i, b := range items {
			if b.ID == ev.New.ID {
				next[i] = ev.New
				replaced = true
			} else {
				next[i] = b
			}
		}
		if !replaced {
			// Row unknown to this session: nothing to replace.
			return items
		}
		return next

	default:
		return items
	}
}
