package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// ErrUndelivered is returned by Notifier when no transport is subscribed.
var ErrUndelivered = errors.New("no subscriber received the message")

// Notifier implements ports.Notifier by publishing to a per-user channel.
// Chat transports subscribe to {prefix}notify:{user} (or the pattern {prefix}notify:*)
// and forward the text.
type Notifier struct {
	client *backend.Client
	prefix string
}

// NewNotifier creates a publisher on client.
func NewNotifier(client *backend.Client, prefix string) *Notifier {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Notifier{client: client, prefix: prefix}
}

// Channel returns the channel a user's messages are published on.
func (n *Notifier) Channel(userID string) string {
	return n.prefix + "notify:" + userID
}

// Notify publishes text for userID. A publish nobody received counts as a failure.
func (n *Notifier) Notify(ctx context.Context, userID, text string) error {
	receivers, err := n.client.Publish(ctx, n.Channel(userID), text).Result()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	if receivers == 0 {
		return ErrUndelivered
	}
	return nil
}
