package ports

import "context"

// AccessGate decides whether a user may start the wizard.
type AccessGate interface {
	IsAuthorized(ctx context.Context, userID string) bool
}

// AccessAdmin is an AccessGate whose membership can be inspected and changed.
type AccessAdmin interface {
	AccessGate

	// IsAdmin reports whether userID may manage the list and broadcast.
	IsAdmin(ctx context.Context, userID string) bool

	// Grant adds userID to the allowed members. Granting twice is a no-op.
	Grant(ctx context.Context, userID string) error

	// Revoke removes userID from the allowed members. Admins are not affected.
	Revoke(ctx context.Context, userID string) error

	// Members returns the allowed users and the admins.
	Members(ctx context.Context) (allowed, admins []string)
}
