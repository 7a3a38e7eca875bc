// Package domain defines typed identifiers and domain primitives shared across
// services. Wrapping uuid.UUID in distinct named types lets the compiler reject
// cross-entity ID mixups (passing a TenantID where a UserID is expected).
//
// Construct IDs from external input via the Parse* functions so the
// "valid, non-empty, non-nil UUID" invariant is enforced at trust boundaries;
// direct casting bypasses validation and is reserved for internal code that
// already holds a valid UUID.
package domain

import (
	"github.com/google/uuid"

	dErrors "nexus/pkg/domain-errors"
)

// UserID identifies an identity (technician, supervisor, manager, reporter).
type UserID uuid.UUID

// TenantID identifies a casino site. All role-scoped notifications and
// audited entities are segmented by tenant.
type TenantID uuid.UUID

// RoleID identifies an entry in a tenant's role catalog.
type RoleID uuid.UUID

// NotificationID identifies a notification row.
type NotificationID uuid.UUID

// TicketID identifies a machine incident ticket.
type TicketID uuid.UUID

// IncidenceID identifies an infrastructure incidence.
type IncidenceID uuid.UUID

// TaskID identifies a special task.
type TaskID uuid.UUID

// GuideID identifies a technical wiki guide.
type GuideID uuid.UUID

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and converts an external string into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseTenantID validates and converts an external string into a TenantID.
func ParseTenantID(s string) (TenantID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(parsed), nil
}

// ParseRoleID validates and converts an external string into a RoleID.
func ParseRoleID(s string) (RoleID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return RoleID{}, err
	}
	return RoleID(parsed), nil
}

// ParseNotificationID validates and converts an external string into a NotificationID.
func ParseNotificationID(s string) (NotificationID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return NotificationID{}, err
	}
	return NotificationID(parsed), nil
}

// ParseTicketID validates and converts an external string into a TicketID.
func ParseTicketID(s string) (TicketID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return TicketID{}, err
	}
	return TicketID(parsed), nil
}

// ParseIncidenceID validates and converts an external string into an IncidenceID.
func ParseIncidenceID(s string) (IncidenceID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return IncidenceID{}, err
	}
	return IncidenceID(parsed), nil
}

// ParseTaskID validates and converts an external string into a TaskID.
func ParseTaskID(s string) (TaskID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return TaskID{}, err
	}
	return TaskID(parsed), nil
}

// ParseGuideID validates and converts an external string into a GuideID.
func ParseGuideID(s string) (GuideID, error) {
	parsed, err := parseUUID(s)
	if err != nil {
		return GuideID{}, err
	}
	return GuideID(parsed), nil
}

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RoleID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TicketID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id IncidenceID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id GuideID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id TenantID) String() string       { return uuid.UUID(id).String() }
func (id RoleID) String() string         { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }
func (id TicketID) String() string       { return uuid.UUID(id).String() }
func (id IncidenceID) String() string    { return uuid.UUID(id).String() }
func (id TaskID) String() string         { return uuid.UUID(id).String() }
func (id GuideID) String() string        { return uuid.UUID(id).String() }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewTenantID returns a fresh random TenantID.
func NewTenantID() TenantID { return TenantID(uuid.New()) }

// NewRoleID returns a fresh random RoleID.
func NewRoleID() RoleID { return RoleID(uuid.New()) }

// NewNotificationID returns a fresh random NotificationID.
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

// NewTicketID returns a fresh random TicketID.
func NewTicketID() TicketID { return TicketID(uuid.New()) }

// NewIncidenceID returns a fresh random IncidenceID.
func NewIncidenceID() IncidenceID { return IncidenceID(uuid.New()) }

// NewTaskID returns a fresh random TaskID.
func NewTaskID() TaskID { return TaskID(uuid.New()) }

// NewGuideID returns a fresh random GuideID.
func NewGuideID() GuideID { return GuideID(uuid.New()) }
