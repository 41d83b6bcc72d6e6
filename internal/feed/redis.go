package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/logger"
)

// RetryPolicy bounds how long Subscribe keeps trying to establish the
// underlying pub/sub channel before giving up with a SubscriptionError.
type RetryPolicy struct {
	InitialWait time.Duration // first wait between attempts
	MaxWait     time.Duration // cap for the exponential backoff
	MaxAttempts int           // total attempts before giving up
}

// DefaultRetryPolicy is a small bounded backoff: the session is expected
// to keep serving its last-known snapshot while we retry, not to wait
// forever on a dead channel.
var DefaultRetryPolicy = RetryPolicy{
	InitialWait: 500 * time.Millisecond,
	MaxWait:     5 * time.Second,
	MaxAttempts: 5,
}

// Redis is the Feed backed by Redis pub/sub. Server-side owner filtering
// falls out of the per-owner channel name: a subscription only ever joins
// its own owner's channel.
type Redis struct {
	client *goredis.Client
	policy RetryPolicy
	logger logger.Logger
}

// NewRedis creates a Redis-backed feed. A zero policy falls back to
// DefaultRetryPolicy.
func NewRedis(client *goredis.Client, policy RetryPolicy, log logger.Logger) *Redis {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy
	}
	return &Redis{client: client, policy: policy, logger: log}
}

// ChannelName returns the pub/sub channel carrying one owner's changes.
func ChannelName(ownerID string) string {
	return "bookmarks:changes:" + ownerID
}

// Publish emits one change event on the owner's channel.
func (r *Redis) Publish(ctx context.Context, ev domain.Change) error {
	owner := ev.Owner()
	if owner == "" {
		return &domain.PersistenceError{Op: "publish", Err: errEmptyOwner}
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return &domain.PersistenceError{Op: "publish", Err: fmt.Errorf("encode change: %w", err)}
	}

	if err := r.client.Publish(ctx, ChannelName(owner), payload).Err(); err != nil {
		return &domain.PersistenceError{Op: "publish", Err: err}
	}
	return nil
}

// Subscribe joins the owner's channel, retrying establishment with
// bounded exponential backoff, then pumps decoded events into the
// returned handle until it is closed.
func (r *Redis) Subscribe(ctx context.Context, ownerID string) (*Subscription, error) {
	if ownerID == "" {
		return nil, &domain.SubscriptionError{OwnerID: ownerID, Err: errEmptyOwner}
	}

	pubsub, err := r.establish(ctx, ownerID)
	if err != nil {
		return nil, &domain.SubscriptionError{OwnerID: ownerID, Err: err}
	}

	sub := newSubscription(ownerID, defaultBuffer, func() {
		// Best effort: the pump exits once the message channel closes.
		_ = pubsub.Close()
	})

	go r.pump(sub, pubsub)

	return sub, nil
}

// establish subscribes and confirms the server acknowledged it, with
// the feed's retry policy. go-redis re-subscribes transparently after
// transient drops once the channel is up.
func (r *Redis) establish(ctx context.Context, ownerID string) (*goredis.PubSub, error) {
	channel := ChannelName(ownerID)
	wait := r.policy.InitialWait
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		pubsub := r.client.Subscribe(ctx, channel)
		if _, err := pubsub.Receive(ctx); err == nil {
			if attempt > 1 {
				r.logger.Warn("change feed subscribed after retry",
					logger.String("owner_id", ownerID),
					logger.Int("attempts", attempt))
			}
			return pubsub, nil
		} else {
			lastErr = err
			_ = pubsub.Close()
		}

		if attempt == r.policy.MaxAttempts {
			break
		}

		r.logger.Warn("change feed subscribe failed, retrying",
			logger.String("owner_id", ownerID),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", wait),
			logger.Error(lastErr))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		wait *= 2
		if wait > r.policy.MaxWait {
			wait = r.policy.MaxWait
		}
	}

	return nil, fmt.Errorf("subscribe %s after %d attempts: %w", channel, r.policy.MaxAttempts, lastErr)
}

func (r *Redis) pump(sub *Subscription, pubsub *goredis.PubSub) {
	for msg := range pubsub.Channel() {
		var ev domain.Change
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			r.logger.Warn("dropping undecodable change event",
				logger.String("owner_id", sub.OwnerID()),
				logger.Error(err))
			continue
		}
		if !sub.deliver(ev) {
			return
		}
	}
	// Message channel closed underneath us (client shut down or handle
	// closed): tear the handle down so consumers unblock.
	sub.Close()
}
