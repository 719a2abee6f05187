package audit

import (
	"time"

	id "tramita/pkg/domain"
)

// Action names an auditable event.
type Action string

const (
	ActionProcessCreated  Action = "process.created"
	ActionProcessRouted   Action = "process.routed"
	ActionProcessArchived Action = "process.archived"
	ActionProcessReopened Action = "process.reopened"
	ActionAccessGranted   Action = "process.access_granted"
	ActionAccessRevoked   Action = "process.access_revoked"
	ActionDocumentAdded   Action = "document.added"
	ActionDocumentEdited  Action = "document.edited"
	ActionDocumentDeleted Action = "document.deleted"
	ActionDocumentSigned  Action = "document.signed"
)

// Event is one append-only audit record. Detail carries action-specific
// context (destination sector, verification code, grantee).
type Event struct {
	Action    Action            `json:"action"`
	ProcessID id.ProcessID      `json:"process_id"`
	ActorID   id.CollaboratorID `json:"actor_id"`
	Detail    string            `json:"detail,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
