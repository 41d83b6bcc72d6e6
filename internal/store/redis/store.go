package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

// Store is the durable bookmarks backend over Redis.
//
// Layout:
//
//	bookmark:<id>            JSON-encoded row
//	user:<owner>:bookmarks   ZSET of ids scored by created_at
//
// Ownership is enforced here: reads and deletes only touch rows whose
// owner matches the caller's identity.
type Store struct {
	client *goredis.Client
}

// NewStore creates a new Redis store.
func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Save persists a bookmark row and indexes it under its owner.
func (s *Store) Save(ctx context.Context, b *domain.Bookmark) error {
	if b.ID == "" || b.OwnerID == "" {
		return fmt.Errorf("bookmark missing id or owner")
	}

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, BookmarkKey(b.ID), data, 0)
	pipe.ZAdd(ctx, OwnerIndexKey(b.OwnerID), goredis.Z{
		Score:  float64(b.CreatedAt.UnixNano()),
		Member: b.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	return nil
}

// Get retrieves one bookmark by id. Returns domain.ErrNotFound on miss.
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}

	return &b, nil
}

// Delete removes one bookmark keyed by id, scoped to ownerID.
// Deleting an absent row returns domain.ErrNotFound; a row owned by
// someone else is indistinguishable from an absent one to the caller.
func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if b.OwnerID != ownerID {
		// Row-level policy: act as if the row does not exist.
		return domain.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, BookmarkKey(id))
	pipe.ZRem(ctx, OwnerIndexKey(ownerID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}

// ListByOwner returns the owner's bookmarks ordered newest-first.
// This is the one-time snapshot query that seeds a session.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Bookmark, error) {
	ids, err := s.client.ZRevRange(ctx, OwnerIndexKey(ownerID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmark ids: %w", err)
	}

	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	bookmarks := make([]*domain.Bookmark, 0, len(ids))
	for _, id := range ids {
		b, err := s.Get(ctx, id)
		if err != nil {
			// Index entry without a row (GC'd mid-listing): skip.
			continue
		}
		bookmarks = append(bookmarks, b)
	}

	return bookmarks, nil
}

// CountByOwner reports how many bookmarks the owner has.
func (s *Store) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := s.client.ZCard(ctx, OwnerIndexKey(ownerID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return n, nil
}
