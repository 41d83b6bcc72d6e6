package redis

// BookmarkKey returns the key holding one bookmark row.
func BookmarkKey(id string) string {
	return "bookmark:" + id
}

// OwnerIndexKey returns the sorted set indexing one owner's bookmark ids,
// scored by creation time so a reverse range yields newest-first.
func OwnerIndexKey(ownerID string) string {
	return "user:" + ownerID + ":bookmarks"
}
