package tasks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// PostgresStore persists tasks.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const taskColumns = `
	id, tenant_id, title, description, status,
	creator_id, assignee_id, points, created_at, updated_at
`

func (s *PostgresStore) Create(ctx context.Context, t *Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID),
		uuid.UUID(t.TenantID),
		t.Title,
		t.Description,
		string(t.Status),
		uuid.UUID(t.CreatorID),
		assigneeValue(t.AssigneeID),
		t.Points,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, taskID id.TaskID) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(taskID))

	var (
		t        Task
		rawID    uuid.UUID
		tenantID uuid.UUID
		status   string
		creator  uuid.UUID
		assignee *uuid.UUID
	)
	err := row.Scan(
		&rawID, &tenantID, &t.Title, &t.Description, &status,
		&creator, &assignee, &t.Points, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query task: %w", err)
	}
	t.ID = id.TaskID(rawID)
	t.TenantID = id.TenantID(tenantID)
	t.Status = Status(status)
	t.CreatorID = id.UserID(creator)
	if assignee != nil {
		v := id.UserID(*assignee)
		t.AssigneeID = &v
	}
	return &t, nil
}

func (s *PostgresStore) Update(ctx context.Context, t *Task) error {
	query := `
		UPDATE tasks
		SET title = $2, description = $3, status = $4,
			assignee_id = $5, points = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(t.ID),
		t.Title,
		t.Description,
		string(t.Status),
		assigneeValue(t.AssigneeID),
		t.Points,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func assigneeValue(assignee *id.UserID) *uuid.UUID {
	if assignee == nil {
		return nil
	}
	v := uuid.UUID(*assignee)
	return &v
}
