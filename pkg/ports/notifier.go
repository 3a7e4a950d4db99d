package ports

import "context"

// Notifier delivers a text message to a single user over whichever transport is deployed.
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}
