package wiki

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// PostgresStore persists wiki guides.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const guideColumns = `
	id, tenant_id, title, body, status, author_id, points, created_at, updated_at, published_at
`

func (s *PostgresStore) Create(ctx context.Context, g *Guide) error {
	query := `
		INSERT INTO wiki_guides (` + guideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(g.ID),
		tenantValue(g.TenantID),
		g.Title,
		g.Body,
		string(g.Status),
		uuid.UUID(g.AuthorID),
		g.Points,
		g.CreatedAt,
		g.UpdatedAt,
		g.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert guide: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, guideID id.GuideID) (*Guide, error) {
	query := `SELECT ` + guideColumns + ` FROM wiki_guides WHERE id = $1`
	g, err := scanGuide(s.db.QueryRowContext(ctx, query, uuid.UUID(guideID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query guide: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) Update(ctx context.Context, g *Guide) error {
	query := `
		UPDATE wiki_guides
		SET title = $2, body = $3, status = $4, points = $5, updated_at = $6, published_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(g.ID),
		g.Title,
		g.Body,
		string(g.Status),
		g.Points,
		g.UpdatedAt,
		g.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("update guide: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListVisible(ctx context.Context, tenantID id.TenantID) ([]*Guide, error) {
	query := `
		SELECT ` + guideColumns + `
		FROM wiki_guides
		WHERE status = 'published' AND (tenant_id IS NULL OR tenant_id = $1)
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("query guides: %w", err)
	}
	defer rows.Close()

	var out []*Guide
	for rows.Next() {
		g, err := scanGuide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan guide: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func tenantValue(tenantID id.TenantID) *uuid.UUID {
	if tenantID.IsNil() {
		return nil
	}
	v := uuid.UUID(tenantID)
	return &v
}

func scanGuide(row interface{ Scan(...any) error }) (*Guide, error) {
	var (
		g           Guide
		rawID       uuid.UUID
		tenantID    *uuid.UUID
		status      string
		author      uuid.UUID
		publishedAt *time.Time
	)
	err := row.Scan(
		&rawID, &tenantID, &g.Title, &g.Body, &status,
		&author, &g.Points, &g.CreatedAt, &g.UpdatedAt, &publishedAt,
	)
	if err != nil {
		return nil, err
	}
	g.ID = id.GuideID(rawID)
	if tenantID != nil {
		g.TenantID = id.TenantID(*tenantID)
	}
	g.Status = Status(status)
	g.AuthorID = id.UserID(author)
	g.PublishedAt = publishedAt
	return &g, nil
}
