package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	id "nexus/pkg/domain"
	txcontext "nexus/pkg/platform/tx"
)

// PostgresStore persists audit records and mirrors each one into the outbox
// table. The Kafka relay drains the outbox; both inserts join the caller's
// transaction when one is on the context, so a rolled-back business write
// leaves neither row behind.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append writes the record and its outbox mirror atomically. It joins a
// transaction already attached to ctx, otherwise it opens one of its own so
// a record can never land without its outbox row or vice versa.
func (s *PostgresStore) Append(ctx context.Context, record Record) error {
	if _, joined := txcontext.From(ctx); joined {
		return s.append(ctx, txcontext.Executor(ctx, s.db), record)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	if err := s.append(ctx, tx, record); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *PostgresStore) append(ctx context.Context, exec txcontext.Runner, record Record) error {
	changes, err := json.Marshal(record.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}

	var actorID, tenantID *uuid.UUID
	if !record.ActorID.IsNil() {
		v := uuid.UUID(record.ActorID)
		actorID = &v
	}
	if !record.TenantID.IsNil() {
		v := uuid.UUID(record.TenantID)
		tenantID = &v
	}

	query := `
		INSERT INTO audit_records (
			id, entity_kind, entity_id, action,
			actor_id, actor_name, tenant_id, changes, request_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = exec.ExecContext(ctx, query,
		record.ID,
		string(record.EntityKind),
		record.EntityID,
		string(record.Action),
		actorID,
		record.ActorName,
		tenantID,
		changes,
		record.RequestID,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	payload, err := json.Marshal(outboxPayload{
		ID:         record.ID.String(),
		EntityKind: string(record.EntityKind),
		EntityID:   record.EntityID,
		Action:     string(record.Action),
		ActorID:    uuidString(actorID),
		ActorName:  record.ActorName,
		TenantID:   uuidString(tenantID),
		Changes:    record.Changes,
		RequestID:  record.RequestID,
		Timestamp:  record.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	outboxQuery := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = exec.ExecContext(ctx, outboxQuery,
		uuid.New(),
		string(record.EntityKind),
		record.EntityID,
		string(record.Action),
		payload,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// outboxPayload is the JSON structure the relay publishes to Kafka.
type outboxPayload struct {
	ID         string                 `json:"id"`
	EntityKind string                 `json:"entity_kind"`
	EntityID   string                 `json:"entity_id"`
	Action     string                 `json:"action"`
	ActorID    string                 `json:"actor_id,omitempty"`
	ActorName  string                 `json:"actor_name,omitempty"`
	TenantID   string                 `json:"tenant_id,omitempty"`
	Changes    map[string]FieldChange `json:"changes"`
	RequestID  string                 `json:"request_id,omitempty"`
	Timestamp  string                 `json:"timestamp"`
}

func uuidString(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
		SELECT id, entity_kind, entity_id, action,
			   actor_id, actor_name, tenant_id, changes, request_id, created_at
		FROM audit_records
		WHERE 1=1
	`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.EntityKind != "" {
		query += " AND entity_kind = " + arg(string(filter.EntityKind))
	}
	if filter.EntityID != "" {
		query += " AND entity_id = " + arg(filter.EntityID)
	}
	if !filter.ActorID.IsNil() {
		query += " AND actor_id = " + arg(uuid.UUID(filter.ActorID))
	}
	if !filter.TenantID.IsNil() {
		query += " AND tenant_id = " + arg(uuid.UUID(filter.TenantID))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record   Record
			kind     string
			action   string
			actorID  *uuid.UUID
			tenantID *uuid.UUID
			changes  []byte
		)
		err := rows.Scan(
			&record.ID,
			&kind,
			&record.EntityID,
			&action,
			&actorID,
			&record.ActorName,
			&tenantID,
			&changes,
			&record.RequestID,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		record.EntityKind = Kind(kind)
		record.Action = Action(action)
		if actorID != nil {
			record.ActorID = id.UserID(*actorID)
		}
		if tenantID != nil {
			record.TenantID = id.TenantID(*tenantID)
		}
		if err := json.Unmarshal(changes, &record.Changes); err != nil {
			return nil, fmt.Errorf("unmarshal audit changes: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
