package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smartbookmark/bookmarkd/internal/httpserver/deps"
	"github.com/smartbookmark/bookmarkd/internal/httpserver/handlers"
	"github.com/smartbookmark/bookmarkd/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(10 * time.Second))
		api.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		api.Use(mw.Auth(d.Verifier, d.Logger))

		api.Get("/api/bookmarks", handlers.ListBookmarks(d))

		// Mutations get a per-IP token bucket on top of auth.
		api.Group(func(mut chi.Router) {
			mut.Use(mw.RateLimit(mw.RateLimitConfig{
				Burst:             20,
				RefillPerIPPerMin: 60,
				MaxEntries:        10_000,
				SweepInterval:     time.Minute,
				IdleTTL:           10 * time.Minute,
				TrustProxy:        d.TrustProxy,
			}))
			mut.Post("/api/bookmarks", handlers.CreateBookmark(d))
			mut.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
		})
	})
}
