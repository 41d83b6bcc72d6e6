package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/smartbookmark/bookmarkd/internal/auth"
	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/httpserver/deps"
	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/session"
)

var validate = validator.New()

type createBookmarkRequest struct {
	URL   string `json:"url" validate:"required"`
	Title string `json:"title"`
}

// ListBookmarks returns the caller's bookmarks newest-first: the
// one-time snapshot a client seeds its collection from.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.CurrentUser(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		bookmarks, err := d.Store.ListByOwner(r.Context(), user.ID)
		if err != nil {
			writeError(w, &domain.PersistenceError{Op: "list", Err: err})
			return
		}

		writeJSON(w, http.StatusOK, bookmarks)
	}
}

// CreateBookmark validates and persists a new bookmark for the caller.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.CurrentUser(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		var req createBookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, &domain.ValidationError{Field: "url", Reason: "required"})
			return
		}

		b, err := session.CreateBookmark(r.Context(), d.Store, d.Feed, d.Logger, user, req.URL, req.Title)
		if err != nil {
			writeError(w, err)
			return
		}

		d.Logger.Info("bookmark created",
			logger.String("owner_id", user.ID),
			logger.String("bookmark_id", b.ID))

		writeJSON(w, http.StatusCreated, b)
	}
}

// DeleteBookmark removes one bookmark keyed by id. Deleting a row that
// is already gone succeeds: a concurrent session won the race and the
// outcome is the same.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.CurrentUser(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, &domain.ValidationError{Field: "id", Reason: "required"})
			return
		}

		found, err := session.DeleteBookmark(r.Context(), d.Store, d.Feed, d.Logger, user.ID, id)
		if err != nil {
			writeError(w, err)
			return
		}

		d.Logger.Info("bookmark deleted",
			logger.String("owner_id", user.ID),
			logger.String("bookmark_id", id),
			logger.Bool("found", found))

		w.WriteHeader(http.StatusNoContent)
	}
}
