package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/feed"
	"github.com/smartbookmark/bookmarkd/internal/logger"
)

// CreateBookmark validates, persists and publishes a new bookmark for
// owner. This is the one creation path, shared by the REST handler and
// live sessions.
func CreateBookmark(ctx context.Context, store Store, f feed.Feed, log logger.Logger, owner domain.User, rawURL, rawTitle string) (*domain.Bookmark, error) {
	if owner.ID == "" {
		return nil, &domain.AuthError{Reason: "no authenticated user"}
	}

	urlStr, title, err := domain.NewBookmarkInput(rawURL, rawTitle)
	if err != nil {
		return nil, err
	}

	b := &domain.Bookmark{
		ID:        uuid.NewString(),
		OwnerID:   owner.ID,
		URL:       urlStr,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	if err := store.Save(ctx, b); err != nil {
		return nil, &domain.PersistenceError{Op: "insert", Err: err}
	}

	if err := f.Publish(ctx, domain.InsertChange(b)); err != nil {
		// The row is durable; subscribers will pick it up on their
		// next snapshot even without the event.
		log.Warn("failed to publish insert event",
			logger.String("owner_id", owner.ID),
			logger.String("bookmark_id", b.ID),
			logger.Error(err))
	}

	return b, nil
}

// DeleteBookmark removes a bookmark from the backend and publishes the
// delete event. Deleting a row that is already gone reports
// domain.ErrNotFound via found=false rather than an error, so callers
// can converge their local state either way.
func DeleteBookmark(ctx context.Context, store Store, f feed.Feed, log logger.Logger, ownerID, id string) (found bool, err error) {
	err = store.Delete(ctx, ownerID, id)
	switch {
	case err == nil:
	case isNotFound(err):
		return false, nil
	default:
		return false, &domain.PersistenceError{Op: "delete", Err: err}
	}

	if err := f.Publish(ctx, domain.DeleteChange(id, ownerID)); err != nil {
		log.Warn("failed to publish delete event",
			logger.String("owner_id", ownerID),
			logger.String("bookmark_id", id),
			logger.Error(err))
	}

	return true, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
