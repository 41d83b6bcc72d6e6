package scheduler

import (
	"context"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/session"
)

const (
	// DefaultSessionIdleTTL is how long a session may sit without
	// activity before the reaper closes it.
	DefaultSessionIdleTTL = 30 * time.Minute
)

// SessionReaper closes live sessions that have gone idle, so abandoned
// stream connections do not hold feed subscriptions forever.
type SessionReaper struct {
	hub      *session.Hub
	logger   logger.Logger
	interval time.Duration
	idleTTL  time.Duration
	stopCh   chan struct{}
}

// NewSessionReaper creates a session reaper.
func NewSessionReaper(
	hub *session.Hub,
	log logger.Logger,
	interval time.Duration,
	idleTTL time.Duration,
) *SessionReaper {
	if idleTTL == 0 {
		idleTTL = DefaultSessionIdleTTL
	}

	return &SessionReaper{
		hub:      hub,
		logger:   log,
		interval: interval,
		idleTTL:  idleTTL,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reap loop.
func (sr *SessionReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.reap()
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper.
func (sr *SessionReaper) Stop() {
	close(sr.stopCh)
}

func (sr *SessionReaper) reap() {
	closed := sr.hub.Reap(sr.idleTTL)
	if closed > 0 {
		sr.logger.Info("reaped idle sessions",
			logger.Int("closed", closed),
			logger.Int("remaining", sr.hub.Len()))
	}
}
