// Package queue defines message payloads exchanged over the message broker.
package queue

// AuditQueueName is the durable queue carrying profile lifecycle events.
const AuditQueueName = "profile.audit"

// Audit event kinds.
const (
	EventAccountDeleted = "account.deleted"
	EventMediaUploaded  = "media.uploaded"
)

// AuditEvent records a lifecycle action for downstream consumers to log or
// analyze without querying the primary database.  ActorID is the account
// that performed the action; AccountID is the account whose resources were
// touched.
type AuditEvent struct {
	Kind       string `json:"kind"`
	ActorID    uint64 `json:"actor_id"`
	AccountID  uint64 `json:"account_id"`
	MediaID    uint64 `json:"media_id,omitempty"`
	MediaKind  string `json:"media_kind,omitempty"`
	Path       string `json:"path,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
