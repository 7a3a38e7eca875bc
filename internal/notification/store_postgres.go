package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "nexus/pkg/domain"
	"nexus/pkg/platform/sentinel"
)

// PostgresStore persists notifications and receipts.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, n *Notification) error {
	var userID, tenantID *uuid.UUID
	if !n.Scope.UserID.IsNil() {
		v := uuid.UUID(n.Scope.UserID)
		userID = &v
	}
	if !n.Scope.TenantID.IsNil() {
		v := uuid.UUID(n.Scope.TenantID)
		tenantID = &v
	}
	var roleName *string
	if n.Scope.RoleName != "" {
		roleName = &n.Scope.RoleName
	}

	query := `
		INSERT INTO notifications (
			id, title, body, severity, category,
			is_global, target_user_id, target_tenant_id, target_role,
			is_directive, active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(n.ID),
		n.Title,
		n.Body,
		string(n.Severity),
		string(n.Category),
		n.Scope.Global,
		userID,
		tenantID,
		roleName,
		n.IsDirective,
		n.Active,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

const notificationColumns = `
	id, title, body, severity, category,
	is_global, target_user_id, target_tenant_id, target_role,
	is_directive, active, created_at
`

func scanNotification(row interface{ Scan(...any) error }) (*Notification, error) {
	var (
		n        Notification
		rawID    uuid.UUID
		severity string
		category string
		userID   *uuid.UUID
		tenantID *uuid.UUID
		roleName *string
	)
	err := row.Scan(
		&rawID, &n.Title, &n.Body, &severity, &category,
		&n.Scope.Global, &userID, &tenantID, &roleName,
		&n.IsDirective, &n.Active, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.ID = id.NotificationID(rawID)
	n.Severity = Severity(severity)
	n.Category = Category(category)
	if userID != nil {
		n.Scope.UserID = id.UserID(*userID)
	}
	if tenantID != nil {
		n.Scope.TenantID = id.TenantID(*tenantID)
	}
	if roleName != nil {
		n.Scope.RoleName = *roleName
	}
	return &n, nil
}

func (s *PostgresStore) Get(ctx context.Context, notificationID id.NotificationID) (*Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(s.db.QueryRowContext(ctx, query, uuid.UUID(notificationID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("query notification: %w", err)
	}
	return n, nil
}

// visibilityClause matches the OR-of-scopes rule: global, mine personally,
// my tenant with no role restriction, or my tenant with my role.
const visibilityClause = `
	(is_global
	 OR target_user_id = $1
	 OR (target_tenant_id = $2 AND target_role IS NULL)
	 OR (target_tenant_id = $2 AND target_role = $3))
`

func (s *PostgresStore) ListVisibleTo(ctx context.Context, userID id.UserID, tenantID id.TenantID, roleName string) ([]VisibleNotification, error) {
	query := `
		SELECT ` + notificationColumns + `, r.read_at
		FROM notifications n
		LEFT JOIN notification_receipts r
			ON r.notification_id = n.id AND r.reader_id = $1
		WHERE n.active AND ` + visibilityClause + `
		ORDER BY n.created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query,
		uuid.UUID(userID), uuid.UUID(tenantID), roleName)
	if err != nil {
		return nil, fmt.Errorf("query visible notifications: %w", err)
	}
	defer rows.Close()

	var out []VisibleNotification
	for rows.Next() {
		var (
			n        Notification
			rawID    uuid.UUID
			severity string
			category string
			tUserID  *uuid.UUID
			tTenant  *uuid.UUID
			tRole    *string
			readAt   *time.Time
		)
		err := rows.Scan(
			&rawID, &n.Title, &n.Body, &severity, &category,
			&n.Scope.Global, &tUserID, &tTenant, &tRole,
			&n.IsDirective, &n.Active, &n.CreatedAt,
			&readAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = id.NotificationID(rawID)
		n.Severity = Severity(severity)
		n.Category = Category(category)
		if tUserID != nil {
			n.Scope.UserID = id.UserID(*tUserID)
		}
		if tTenant != nil {
			n.Scope.TenantID = id.TenantID(*tTenant)
		}
		if tRole != nil {
			n.Scope.RoleName = *tRole
		}
		out = append(out, VisibleNotification{
			Notification: n,
			Read:         readAt != nil,
			ReadAt:       readAt,
		})
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.NotificationID, readerID id.UserID, readAt time.Time) (*ReadReceipt, bool, error) {
	insert := `
		INSERT INTO notification_receipts (notification_id, reader_id, read_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (notification_id, reader_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, insert,
		uuid.UUID(notificationID), uuid.UUID(readerID), readAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, false, sentinel.ErrNotFound
		}
		return nil, false, fmt.Errorf("insert read receipt: %w", err)
	}
	inserted, _ := res.RowsAffected()

	var receipt ReadReceipt
	var nID, rID uuid.UUID
	query := `
		SELECT notification_id, reader_id, read_at
		FROM notification_receipts
		WHERE notification_id = $1 AND reader_id = $2
	`
	err = s.db.QueryRowContext(ctx, query,
		uuid.UUID(notificationID), uuid.UUID(readerID),
	).Scan(&nID, &rID, &receipt.ReadAt)
	if err != nil {
		return nil, false, fmt.Errorf("query read receipt: %w", err)
	}
	receipt.NotificationID = id.NotificationID(nID)
	receipt.ReaderID = id.UserID(rID)
	return &receipt, inserted > 0, nil
}

func isForeignKeyViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23503"
	}
	return false
}

func (s *PostgresStore) CountUnread(ctx context.Context, userID id.UserID, tenantID id.TenantID, roleName string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications n
		WHERE n.active AND ` + visibilityClause + `
		AND NOT EXISTS (
			SELECT 1 FROM notification_receipts r
			WHERE r.notification_id = n.id AND r.reader_id = $1
		)
	`
	var count int
	err := s.db.QueryRowContext(ctx, query,
		uuid.UUID(userID), uuid.UUID(tenantID), roleName,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListSweepableDirectiveGlobal(ctx context.Context, cutoff time.Time) ([]id.NotificationID, error) {
	query := `
		SELECT id FROM notifications
		WHERE (is_directive OR is_global) AND created_at < $1
	`
	return s.listIDs(ctx, query, cutoff)
}

func (s *PostgresStore) ListSweepableRead(ctx context.Context, cutoff time.Time) ([]id.NotificationID, error) {
	query := `
		SELECT n.id FROM notifications n
		WHERE NOT (n.is_directive OR n.is_global)
		AND n.created_at < $1
		AND EXISTS (
			SELECT 1 FROM notification_receipts r WHERE r.notification_id = n.id
		)
	`
	return s.listIDs(ctx, query, cutoff)
}

func (s *PostgresStore) ListSweepableUnread(ctx context.Context, cutoff time.Time) ([]id.NotificationID, error) {
	query := `
		SELECT n.id FROM notifications n
		WHERE NOT (n.is_directive OR n.is_global)
		AND n.created_at < $1
		AND NOT EXISTS (
			SELECT 1 FROM notification_receipts r WHERE r.notification_id = n.id
		)
	`
	return s.listIDs(ctx, query, cutoff)
}

func (s *PostgresStore) listIDs(ctx context.Context, query string, args ...any) ([]id.NotificationID, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sweepable notifications: %w", err)
	}
	defer rows.Close()

	var out []id.NotificationID
	for rows.Next() {
		var raw uuid.UUID
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan notification id: %w", err)
		}
		out = append(out, id.NotificationID(raw))
	}
	return out, rows.Err()
}

// DeleteByIDs removes notifications; receipts cascade via the schema's
// ON DELETE CASCADE.
func (s *PostgresStore) DeleteByIDs(ctx context.Context, ids []id.NotificationID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ANY($1)`, pq.Array(rawUUIDs(ids)))
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, ids []id.NotificationID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET active = FALSE WHERE active AND id = ANY($1)`,
		pq.Array(rawUUIDs(ids)))
	if err != nil {
		return 0, fmt.Errorf("deactivate notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func rawUUIDs(ids []id.NotificationID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	for i, v := range ids {
		out[i] = uuid.UUID(v)
	}
	return out
}
