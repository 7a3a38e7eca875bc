// Package tickets tracks machine incident reports through their repair
// lifecycle. Tickets are the busiest reactive entity: creation alerts the
// floor technicians, closure notifies the reporter, reopening pulls the
// assigned technician back in.
package tickets

import (
	"fmt"
	"strings"
	"time"

	"nexus/internal/audit"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

// Status is a ticket's lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusOnHold     Status = "on_hold"
	StatusClosed     Status = "closed"
	StatusReopened   Status = "reopened"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusOnHold, StatusClosed, StatusReopened:
		return true
	}
	return false
}

// Category tags the kind of problem reported.
type Category string

const (
	CategoryHardware    Category = "hardware"
	CategoryPeripherals Category = "peripherals"
	CategorySoftware    Category = "software"
	CategoryNetwork     Category = "network"
	CategoryOther       Category = "other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryHardware, CategoryPeripherals, CategorySoftware, CategoryNetwork, CategoryOther:
		return true
	}
	return false
}

// Priority orders the repair queue.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// validTransitions lists reachable next states. Closed tickets can only be
// reopened; reopened tickets behave like open ones.
var validTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusOnHold, StatusClosed},
	StatusInProgress: {StatusOnHold, StatusClosed},
	StatusOnHold:     {StatusInProgress, StatusClosed},
	StatusClosed:     {StatusReopened},
	StatusReopened:   {StatusInProgress, StatusOnHold, StatusClosed},
}

// CanTransitionTo reports whether the move is allowed. Same-state saves are
// permitted; they are no-ops that audit and notify nothing.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Ticket is the aggregate root for one incident report.
//
// Invariants:
//   - Title is non-empty and at most 200 characters
//   - TenantID and ReporterID are set and immutable after construction
//   - Status moves only along validTransitions
//   - ClosedAt is set exactly when Status is closed
type Ticket struct {
	ID          id.TicketID
	TenantID    id.TenantID
	Folio       string // human-readable ticket number, assigned once at creation
	Title       string
	Description string
	MachineCode string
	Category    Category
	Priority    Priority
	Status      Status
	ReporterID  id.UserID
	AssigneeID  *id.UserID
	ClosureNote string
	ReopenCount int
	ClosedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(ticketID id.TicketID, tenantID id.TenantID, reporterID id.UserID, title, description, machineCode string, category Category, priority Priority, now time.Time) (*Ticket, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "ticket title cannot be empty")
	}
	if len(title) > 200 {
		return nil, dErrors.New(dErrors.CodeValidation, "ticket title must be 200 characters or less")
	}
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "ticket requires a tenant")
	}
	if reporterID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "ticket requires a reporter")
	}
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown ticket category %q", category)
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown ticket priority %q", priority)
	}
	return &Ticket{
		ID:          ticketID,
		TenantID:    tenantID,
		Folio:       newFolio(ticketID, now),
		Title:       title,
		Description: description,
		MachineCode: machineCode,
		Category:    category,
		Priority:    priority,
		Status:      StatusOpen,
		ReporterID:  reporterID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// newFolio derives the human-readable ticket number from the ticket's own ID
// rather than a table count, so concurrent creates cannot collide.
func newFolio(ticketID id.TicketID, now time.Time) string {
	return fmt.Sprintf("TK-%d-%s", now.Year(), strings.ToUpper(ticketID.String()[:8]))
}

// ApplyStatus moves the ticket to next, maintaining ClosedAt.
func (t *Ticket) ApplyStatus(next Status, now time.Time) error {
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid ticket status")
	}
	if !t.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeConflict, "cannot move ticket from %s to %s", t.Status, next)
	}
	if t.Status == next {
		return nil
	}
	if next == StatusReopened {
		t.ReopenCount++
	}
	t.Status = next
	t.UpdatedAt = now
	if next == StatusClosed {
		t.ClosedAt = &now
	} else {
		t.ClosedAt = nil
	}
	return nil
}

// ApplyClose closes the ticket with an operator-supplied explanation. The
// note survives a later reopen so the history of the last closure stays
// readable.
func (t *Ticket) ApplyClose(note string, now time.Time) error {
	if err := t.ApplyStatus(StatusClosed, now); err != nil {
		return err
	}
	if note != "" {
		t.ClosureNote = note
	}
	return nil
}

// ApplyAssignee changes the responsible technician. nil unassigns.
func (t *Ticket) ApplyAssignee(assignee *id.UserID, now time.Time) {
	t.AssigneeID = assignee
	t.UpdatedAt = now
}

func (t *Ticket) AuditKind() audit.Kind { return audit.KindTicket }
func (t *Ticket) AuditEntityID() string { return t.ID.String() }

// AuditSnapshot lists the audited fields explicitly; schema additions only
// show up in the trail when added here.
func (t *Ticket) AuditSnapshot() audit.Snapshot {
	var assignee any
	if t.AssigneeID != nil {
		assignee = *t.AssigneeID
	}
	var closedAt any
	if t.ClosedAt != nil {
		closedAt = *t.ClosedAt
	}
	return audit.Capture(map[string]any{
		"folio":        t.Folio,
		"title":        t.Title,
		"description":  t.Description,
		"machine_code": t.MachineCode,
		"category":     string(t.Category),
		"priority":     string(t.Priority),
		"status":       string(t.Status),
		"reporter_id":  t.ReporterID,
		"assignee_id":  assignee,
		"closure_note": t.ClosureNote,
		"reopen_count": t.ReopenCount,
		"closed_at":    closedAt,
	})
}
