package tickets

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// PostgresStore persists tickets.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ticketColumns = `
	id, tenant_id, folio, title, description, machine_code, category, priority,
	status, reporter_id, assignee_id, closure_note, reopen_count, closed_at,
	created_at, updated_at
`

func (s *PostgresStore) Create(ctx context.Context, t *Ticket) error {
	query := `
		INSERT INTO tickets (` + ticketColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID),
		uuid.UUID(t.TenantID),
		t.Folio,
		t.Title,
		t.Description,
		t.MachineCode,
		string(t.Category),
		string(t.Priority),
		string(t.Status),
		uuid.UUID(t.ReporterID),
		assigneeValue(t.AssigneeID),
		t.ClosureNote,
		t.ReopenCount,
		t.ClosedAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ticketID id.TicketID) (*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	t, err := scanTicket(s.db.QueryRowContext(ctx, query, uuid.UUID(ticketID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query ticket: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Update(ctx context.Context, t *Ticket) error {
	query := `
		UPDATE tickets
		SET title = $2, description = $3, machine_code = $4, category = $5,
			priority = $6, status = $7, assignee_id = $8, closure_note = $9,
			reopen_count = $10, closed_at = $11, updated_at = $12
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID),
		t.Title,
		t.Description,
		t.MachineCode,
		string(t.Category),
		string(t.Priority),
		string(t.Status),
		assigneeValue(t.AssigneeID),
		t.ClosureNote,
		t.ReopenCount,
		t.ClosedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var out []*Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func assigneeValue(assignee *id.UserID) *uuid.UUID {
	if assignee == nil {
		return nil
	}
	v := uuid.UUID(*assignee)
	return &v
}

func scanTicket(row interface{ Scan(...any) error }) (*Ticket, error) {
	var (
		t        Ticket
		rawID    uuid.UUID
		tenantID uuid.UUID
		category string
		priority string
		status   string
		reporter uuid.UUID
		assignee *uuid.UUID
		closedAt *time.Time
	)
	err := row.Scan(
		&rawID, &tenantID, &t.Folio, &t.Title, &t.Description, &t.MachineCode,
		&category, &priority, &status, &reporter, &assignee, &t.ClosureNote,
		&t.ReopenCount, &closedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ID = id.TicketID(rawID)
	t.TenantID = id.TenantID(tenantID)
	t.Category = Category(category)
	t.Priority = Priority(priority)
	t.Status = Status(status)
	t.ReporterID = id.UserID(reporter)
	if assignee != nil {
		v := id.UserID(*assignee)
		t.AssigneeID = &v
	}
	t.ClosedAt = closedAt
	return &t, nil
}
