// Package audit records who changed what, when, across the facility domain.
// Records are append-only; persistence is best-effort and never blocks the
// business write that triggered it.
package audit

import (
	"time"

	"github.com/google/uuid"

	id "nexus/pkg/domain"
)

// Action classifies what happened to the entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind names the entity type being audited.
type Kind string

const (
	KindTicket              Kind = "ticket"
	KindIncidence           Kind = "infra_incidence"
	KindTask                Kind = "special_task"
	KindWikiGuide           Kind = "wiki_guide"
	KindTenant              Kind = "tenant"
	KindNotification        Kind = "notification"
	KindNotificationReceipt Kind = "notification_receipt"
	KindAuditRecord         Kind = "audit_record"
)

// excludedKinds lists entity kinds that never produce audit records. The
// notification tables churn constantly and auditing the audit table would
// recurse.
var excludedKinds = map[Kind]struct{}{
	KindNotification:        {},
	KindNotificationReceipt: {},
	KindAuditRecord:         {},
}

// Excluded reports whether the kind is exempt from auditing.
func Excluded(kind Kind) bool {
	_, ok := excludedKinds[kind]
	return ok
}

// FieldChange holds the before and after value of one audited field.
// Values are normalized strings; nil means the field had no value.
type FieldChange struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

// Record is one append-only audit entry.
type Record struct {
	ID         uuid.UUID
	EntityKind Kind
	EntityID   string
	Action     Action
	ActorID    id.UserID
	ActorName  string
	TenantID   id.TenantID
	Changes    map[string]FieldChange
	RequestID  string
	CreatedAt  time.Time
}

// Filter narrows audit queries. Zero fields are ignored.
type Filter struct {
	EntityKind Kind
	EntityID   string
	ActorID    id.UserID
	TenantID   id.TenantID
	Limit      int
}
