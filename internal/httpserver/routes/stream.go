package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/smartbookmark/bookmarkd/internal/httpserver/deps"
	"github.com/smartbookmark/bookmarkd/internal/httpserver/handlers"
	"github.com/smartbookmark/bookmarkd/internal/httpserver/mw"
)

func init() { Register(registerStream) }

// The stream route is long-lived, so no rate limiting and no request
// timeout apply here. Auth still gates it (token may arrive as an
// access_token query parameter since browsers cannot set websocket
// headers).
func registerStream(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), mw.Auth(d.Verifier, d.Logger)).Get("/api/bookmarks/stream", handlers.Stream(d))
}
