// Package runtime implements the six-step wizard state machine.
//
// The wizard owns no state of its own: sessions live in a ports.SessionStore
// behind a session.Manager, and every mutation of a user's session happens
// inside Manager.WithLock, so interleaved submits for one user are applied
// one at a time.
package runtime
