package domain

// ChangeType identifies the kind of row mutation a change event describes.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeDelete ChangeType = "DELETE"
	ChangeUpdate ChangeType = "UPDATE"
)

// Change is one notification from the change feed describing a single
// row insert, delete or update.
//
// INSERT and UPDATE carry the full row in New. DELETE carries only the
// key of the removed row in Old (the backend does not replay the full
// old row on deletes).
type Change struct {
	Type ChangeType `json:"type"`
	New  *Bookmark  `json:"new,omitempty"`
	Old  *ChangeKey `json:"old,omitempty"`
}

// ChangeKey is the key-only payload of a DELETE event.
type ChangeKey struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// Owner returns the owner the change is scoped to, or "" when the
// payload carries no owner at all (malformed event).
func (c Change) Owner() string {
	switch {
	case c.New != nil:
		return c.New.OwnerID
	case c.Old != nil:
		return c.Old.OwnerID
	default:
		return ""
	}
}

// InsertChange builds the INSERT event published after a successful insert.
func InsertChange(b *Bookmark) Change {
	return Change{Type: ChangeInsert, New: b}
}

// DeleteChange builds the key-only DELETE event published after a successful delete.
func DeleteChange(id, ownerID string) Change {
	return Change{Type: ChangeDelete, Old: &ChangeKey{ID: id, OwnerID: ownerID}}
}

// UpdateChange builds the UPDATE event for an external row rewrite.
func UpdateChange(b *Bookmark) Change {
	return Change{Type: ChangeUpdate, New: b}
}
