package mw

import (
	"net/http"
	"strings"

	"github.com/smartbookmark/bookmarkd/internal/auth"
	"github.com/smartbookmark/bookmarkd/internal/logger"
)

// Auth verifies the Bearer token on every request and stores the
// authenticated user in the request context. Requests without a valid
// token are rejected with 401 before any handler runs.
func Auth(verifier *auth.Verifier, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				// Browser websocket clients cannot set headers; accept
				// the token as a query parameter on upgrades.
				token = r.URL.Query().Get("access_token")
			}

			user, err := verifier.Verify(token)
			if err != nil {
				log.Debug("rejected unauthenticated request",
					logger.String("path", r.URL.Path),
					logger.Error(err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"not authenticated"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
