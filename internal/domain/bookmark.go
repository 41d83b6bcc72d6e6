package domain

import "time"

// Bookmark is a single saved URL owned by one user.
// The backend assigns ID and CreatedAt at insert time; both are immutable.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier.
	// It is the deduplication and equality key everywhere.
	ID string `json:"id"`

	// OwnerID is the authenticated user the row belongs to.
	// Every read, write and subscription is scoped to one owner.
	OwnerID string `json:"owner_id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// URL is the absolute URL being bookmarked.
	URL string `json:"url"`

	// Title is the display string.
	// Defaults to URL when the caller supplies none.
	Title string `json:"title"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt orders the initial snapshot (newest first).
	CreatedAt time.Time `json:"created_at"`
}

// User is the identity handed back by the external auth backend.
// Only the fields the core consumes are carried.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
