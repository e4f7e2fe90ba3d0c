// Package dispatch serializes posting of rendered feed items into destination
// channels, absorbing transient delivery failures with a bounded retry budget
// and pacing successive posts to stay under the platform's rate limits.
package dispatch

import (
	"context"
	"errors"
	"time"

	"feedbot/models"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// Messenger is the chat-platform boundary the dispatcher posts through.
type Messenger interface {
	PostMessage(ctx context.Context, channelID int64, msg *Message) error
}

// Config controls the retry budget and delays. Tests shrink the delays.
type Config struct {
	// MaxRetries is the number of additional attempts after the first failure.
	MaxRetries uint64
	// RetryDelay is the fixed wait between failed attempts.
	RetryDelay time.Duration
	// PostDelay is the pacing wait after each successful delivery.
	PostDelay time.Duration
}

// DefaultConfig returns the production retry policy: 10 retries five seconds
// apart, two seconds of pacing after each success.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 10,
		RetryDelay: 5 * time.Second,
		PostDelay:  2 * time.Second,
	}
}

// Dispatcher posts messages with bounded retry. It does not decide batch
// policy; callers stop the batch when Post returns an error so the cursor
// stays at the last confirmed success.
type Dispatcher struct {
	messenger Messenger
	config    Config
}

// NewDispatcher creates a dispatcher over the given messenger.
func NewDispatcher(messenger Messenger, config Config) *Dispatcher {
	return &Dispatcher{
		messenger: messenger,
		config:    config,
	}
}

// Post delivers one message. Transient delivery failures are retried on a
// fixed delay until the budget is exhausted; any other error is terminal
// immediately. After a successful delivery the pacing delay is applied before
// returning so the caller can move straight to the next item.
func (d *Dispatcher) Post(ctx context.Context, channelID int64, msg *Message) error {
	attempt := 0

	operation := func() error {
		err := d.messenger.PostMessage(ctx, channelID, msg)
		if err == nil {
			return nil
		}

		var deliveryErr *models.DeliveryError
		if !errors.As(err, &deliveryErr) {
			return backoff.Permanent(err)
		}

		attempt++
		log.Warnf("Delivery to channel %d failed (attempt %d): %v, retrying in %s", channelID, attempt, err, d.config.RetryDelay)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(d.config.RetryDelay), d.config.MaxRetries),
		ctx,
	)

	if err := backoff.Retry(operation, policy); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.config.PostDelay):
	}

	return nil
}
