package tickets

import (
	"context"
	"errors"
	"strings"

	"nexus/internal/lifecycle"
	id "nexus/pkg/domain"
	dErrors "nexus/pkg/domain-errors"
	"nexus/pkg/platform/sentinel"
	"nexus/pkg/requestcontext"
)

// Service orchestrates ticket writes. Every mutation captures the pre-write
// snapshot before touching the row, then hands the committed change to the
// lifecycle manager for audit and reactor fan-out.
type Service struct {
	store     Store
	lifecycle *lifecycle.Manager
}

func NewService(store Store, lc *lifecycle.Manager) *Service {
	return &Service{store: store, lifecycle: lc}
}

// CreateParams carries the caller-supplied ticket fields.
type CreateParams struct {
	Title       string
	Description string
	MachineCode string
	Category    Category
	Priority    Priority
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Ticket, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	tenantID := requestcontext.Tenant(ctx)
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "tickets belong to a tenant")
	}

	t, err := New(
		id.NewTicketID(),
		tenantID,
		actor.UserID,
		strings.TrimSpace(params.Title),
		strings.TrimSpace(params.Description),
		strings.TrimSpace(params.MachineCode),
		params.Category,
		params.Priority,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create ticket")
	}

	s.lifecycle.Created(ctx, t)
	return t, nil
}

func (s *Service) Get(ctx context.Context, ticketID id.TicketID) (*Ticket, error) {
	t, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return nil, wrapTicketErr(err)
	}
	return t, nil
}

// UpdateStatus transitions the ticket and fans out the change.
func (s *Service) UpdateStatus(ctx context.Context, ticketID id.TicketID, next Status) (*Ticket, error) {
	t, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return nil, wrapTicketErr(err)
	}

	before := t.AuditSnapshot()
	if err := t.ApplyStatus(next, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, wrapTicketErr(err)
	}

	s.lifecycle.Updated(ctx, before, t)
	return t, nil
}

// Close ends the ticket with an explanation from the closing operator.
func (s *Service) Close(ctx context.Context, ticketID id.TicketID, note string) (*Ticket, error) {
	t, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return nil, wrapTicketErr(err)
	}

	before := t.AuditSnapshot()
	if err := t.ApplyClose(strings.TrimSpace(note), requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, wrapTicketErr(err)
	}

	s.lifecycle.Updated(ctx, before, t)
	return t, nil
}

// Reopen pulls a closed ticket back into work, bumping its reopen counter.
func (s *Service) Reopen(ctx context.Context, ticketID id.TicketID) (*Ticket, error) {
	return s.UpdateStatus(ctx, ticketID, StatusReopened)
}

// Assign changes the responsible technician; nil unassigns.
func (s *Service) Assign(ctx context.Context, ticketID id.TicketID, assignee *id.UserID) (*Ticket, error) {
	t, err := s.store.Get(ctx, ticketID)
	if err != nil {
		return nil, wrapTicketErr(err)
	}

	before := t.AuditSnapshot()
	t.ApplyAssignee(assignee, requestcontext.Now(ctx))

	if err := s.store.Update(ctx, t); err != nil {
		return nil, wrapTicketErr(err)
	}

	s.lifecycle.Updated(ctx, before, t)
	return t, nil
}

func (s *Service) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*Ticket, error) {
	out, err := s.store.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tickets")
	}
	return out, nil
}

func wrapTicketErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "ticket not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "ticket store failure")
}
