// Package notification implements the targeted message fan-out: routing by
// scope (global, user, tenant, tenant+role), read receipts, the unread
// badge, and category-specific retention.
package notification

import (
	"time"

	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
)

// Severity grades how prominently a notification is surfaced.
type Severity string

const (
	SeverityUrgent Severity = "urgent"
	SeverityAlert  Severity = "alert"
	SeverityInfo   Severity = "informational"
)

func (s Severity) IsValid() bool {
	switch s {
	case SeverityUrgent, SeverityAlert, SeverityInfo:
		return true
	}
	return false
}

// Category tags the originating domain.
type Category string

const (
	CategoryTicket         Category = "ticket"
	CategoryInfrastructure Category = "infrastructure"
	CategoryWiki           Category = "wiki"
	CategorySystem         Category = "system"
	CategoryDirective      Category = "directive"
)

// Scope is a notification's targeting rule. Exactly one of the four forms
// is valid:
//   - Global: no user, tenant, or role
//   - User: UserID only
//   - Tenant: TenantID only
//   - TenantRole: TenantID and RoleName
type Scope struct {
	Global   bool
	UserID   id.UserID
	TenantID id.TenantID
	RoleName string
}

// GlobalScope targets every identity.
func GlobalScope() Scope { return Scope{Global: true} }

// UserScope targets a single identity.
func UserScope(userID id.UserID) Scope { return Scope{UserID: userID} }

// TenantScope targets every identity of a tenant, regardless of role.
func TenantScope(tenantID id.TenantID) Scope { return Scope{TenantID: tenantID} }

// TenantRoleScope targets identities of a tenant holding a role.
func TenantRoleScope(tenantID id.TenantID, roleName string) Scope {
	return Scope{TenantID: tenantID, RoleName: roleName}
}

// Validate enforces mutual exclusivity and the at-least-one-criterion rule.
func (s Scope) Validate() error {
	if s.Global {
		if !s.UserID.IsNil() || !s.TenantID.IsNil() || s.RoleName != "" {
			return dErrors.New(dErrors.CodeValidation, "global scope cannot carry a user, tenant, or role target")
		}
		return nil
	}
	if !s.UserID.IsNil() {
		if !s.TenantID.IsNil() || s.RoleName != "" {
			return dErrors.New(dErrors.CodeValidation, "user scope cannot carry a tenant or role target")
		}
		return nil
	}
	if !s.TenantID.IsNil() {
		return nil
	}
	if s.RoleName != "" {
		return dErrors.New(dErrors.CodeValidation, "role targeting requires a tenant")
	}
	return dErrors.New(dErrors.CodeValidation, "notification must target something: global, user, tenant, or tenant+role")
}

// Notification is one message plus its targeting rule.
type Notification struct {
	ID          id.NotificationID
	Title       string
	Body        string
	Severity    Severity
	Category    Category
	Scope       Scope
	IsDirective bool
	Active      bool
	CreatedAt   time.Time
}

// New validates and builds a notification.
func New(notificationID id.NotificationID, title, body string, severity Severity, category Category, scope Scope, isDirective bool, now time.Time) (*Notification, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "notification title cannot be empty")
	}
	if !severity.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid notification severity")
	}
	if category == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "notification category cannot be empty")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	return &Notification{
		ID:          notificationID,
		Title:       title,
		Body:        body,
		Severity:    severity,
		Category:    category,
		Scope:       scope,
		IsDirective: isDirective,
		Active:      true,
		CreatedAt:   now,
	}, nil
}

// VisibleTo reports whether the notification's scope matches an identity.
// Matching is an OR over scopes: global, mine personally, my tenant with no
// role restriction, or my tenant with my role.
func (n *Notification) VisibleTo(userID id.UserID, tenantID id.TenantID, roleName string) bool {
	s := n.Scope
	switch {
	case s.Global:
		return true
	case !s.UserID.IsNil():
		return s.UserID == userID
	case !s.TenantID.IsNil() && s.RoleName == "":
		return s.TenantID == tenantID
	case !s.TenantID.IsNil():
		return s.TenantID == tenantID && s.RoleName == roleName
	}
	return false
}

// ReadReceipt records that an identity has seen a notification. At most one
// exists per (notification, reader) pair.
type ReadReceipt struct {
	NotificationID id.NotificationID
	ReaderID       id.UserID
	ReadAt         time.Time
}
