package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartbookmark/bookmarkd/internal/auth"
	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/httpserver/deps"
	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/session"
	"github.com/smartbookmark/bookmarkd/internal/utils"
)

// streamMessage is one websocket frame: either the initial snapshot or
// a single change event, mirroring what the client's reconciler folds.
type streamMessage struct {
	Type      string             `json:"type"` // SNAPSHOT | INSERT | DELETE | UPDATE
	Bookmarks []*domain.Bookmark `json:"bookmarks,omitempty"`
	New       *domain.Bookmark   `json:"new,omitempty"`
	Old       *domain.ChangeKey  `json:"old,omitempty"`
}

// Stream upgrades the connection to a websocket and serves the caller's
// live view: one snapshot frame, then one frame per applied change,
// until either side goes away.
func Stream(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(d.AllowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.CurrentUser(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		defer utils.Close(conn)

		s, err := session.Open(r.Context(), user, d.Store, d.Feed, d.Logger)
		if err != nil {
			d.Logger.Error("failed to open live session",
				logger.String("owner_id", user.ID),
				logger.Error(err))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot failed"),
				time.Now().Add(d.StreamWriteTimeout))
			return
		}
		d.Hub.Register(s)
		defer func() {
			d.Hub.Unregister(s)
			s.Close()
		}()

		d.Logger.Info("live session opened",
			logger.String("owner_id", user.ID),
			logger.Bool("degraded", s.Degraded()))

		// Snapshot first, so the client can render before events flow.
		if err := writeFrame(conn, d.StreamWriteTimeout, streamMessage{
			Type:      "SNAPSHOT",
			Bookmarks: s.Bookmarks(),
		}); err != nil {
			return
		}

		// Read pump: we never expect client frames, but reading is how
		// we learn the peer went away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		// Keepalive pings double as liveness for the idle reaper.
		keepalive := time.NewTicker(30 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case <-keepalive.C:
				s.Touch()
				deadline := time.Now().Add(d.StreamWriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			case ev := <-s.Changes():
				msg := streamMessage{Type: string(ev.Type), New: ev.New, Old: ev.Old}
				if err := writeFrame(conn, d.StreamWriteTimeout, msg); err != nil {
					d.Logger.Debug("stream write failed, dropping connection",
						logger.String("owner_id", user.ID),
						logger.Error(err))
					return
				}
			case <-s.Done():
				// Session reaped or feed torn down; tell the client.
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(d.StreamWriteTimeout))
				return
			case <-gone:
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, timeout time.Duration, msg streamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	return conn.WriteJSON(msg)
}

func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowAny := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAny = true
			continue
		}
		allowed[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAny {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser client; auth already gated it.
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
