/*
Package session serializes access to the wizard session of each user.

It pairs a SessionStore with per-user mutual exclusion: a reference-counted
in-process mutex per user, optionally backed by a DistributedLocker when several
replicas share the same store. Different users never contend with each other.
*/
package session
