/*
Package domain contains the core domain models of the Prompt Architect wizard.

It defines the fixed step order of the wizard, the closed vocabularies that do not
come from the catalog, the per-user Session being filled in, and the immutable
HistoryRecord written once a prompt is composed. This package is kept pure and free
of I/O so that stores and transports can depend on it without cycles.

# Key Entities

  - Step / State: the ordered wizard steps and the state tag derived from them.
  - Session: the in-progress selections of a single user.
  - HistoryRecord: a composed prompt, persisted append-only.
  - Outcome: what a wizard operation hands back to a transport.
*/
package domain
