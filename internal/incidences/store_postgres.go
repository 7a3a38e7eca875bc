package incidences

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// PostgresStore persists incidences.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const incidenceColumns = `
	id, tenant_id, title, description, severity, affects_operation,
	reporter_id, started_at, ended_at, created_at, updated_at
`

func (s *PostgresStore) Create(ctx context.Context, i *Incidence) error {
	query := `
		INSERT INTO incidences (` + incidenceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(i.ID),
		uuid.UUID(i.TenantID),
		i.Title,
		i.Description,
		string(i.Severity),
		i.AffectsOperation,
		uuid.UUID(i.ReporterID),
		i.StartedAt,
		i.EndedAt,
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert incidence: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, incidenceID id.IncidenceID) (*Incidence, error) {
	query := `SELECT ` + incidenceColumns + ` FROM incidences WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(incidenceID))

	var (
		i        Incidence
		rawID    uuid.UUID
		tenantID uuid.UUID
		severity string
		reporter uuid.UUID
		endedAt  *time.Time
	)
	err := row.Scan(
		&rawID, &tenantID, &i.Title, &i.Description, &severity, &i.AffectsOperation,
		&reporter, &i.StartedAt, &endedAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query incidence: %w", err)
	}
	i.ID = id.IncidenceID(rawID)
	i.TenantID = id.TenantID(tenantID)
	i.Severity = Severity(severity)
	i.ReporterID = id.UserID(reporter)
	i.EndedAt = endedAt
	return &i, nil
}

func (s *PostgresStore) Update(ctx context.Context, i *Incidence) error {
	query := `
		UPDATE incidences
		SET title = $2, description = $3, severity = $4, affects_operation = $5,
			ended_at = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(i.ID),
		i.Title,
		i.Description,
		string(i.Severity),
		i.AffectsOperation,
		i.EndedAt,
		i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update incidence: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
