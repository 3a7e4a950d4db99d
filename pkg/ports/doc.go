/*
Package ports defines the driven ports (interfaces) of the Prompt Architect core.

These interfaces decouple the wizard from external implementations, allowing it to
work with various storage backends, access lists and notification channels.

# Key Interfaces

  - SessionStore: persists the in-progress Session of each user (may be ephemeral).
  - HistoryStore: append-only, durable store of composed prompts.
  - DistributedLocker: distributed locking for concurrent access to one user's session.
  - AccessGate / AccessAdmin: the allow/deny list consulted before a wizard starts.
  - Notifier: outbound delivery of broadcast messages.
*/
package ports
