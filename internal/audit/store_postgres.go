package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "tramita/pkg/domain"
	txcontext "tramita/pkg/platform/tx"
)

// PostgresStore persists audit events in PostgreSQL. Events are written
// inside the caller's transaction when one is open, so the trail commits or
// rolls back with the mutation it describes.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO audit_events (id, action, process_id, actor_id, detail, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), string(event.Action), uuid.UUID(event.ProcessID),
		uuid.UUID(event.ActorID), event.Detail, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByProcess(ctx context.Context, processID id.ProcessID) ([]Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT action, process_id, actor_id, detail, created_at
		 FROM audit_events WHERE process_id = $1 ORDER BY created_at ASC`,
		uuid.UUID(processID),
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			event     Event
			action    string
			procUUID  uuid.UUID
			actorUUID uuid.UUID
			detail    sql.NullString
		)
		if err := rows.Scan(&action, &procUUID, &actorUUID, &detail, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = Action(action)
		event.ProcessID = id.ProcessID(procUUID)
		event.ActorID = id.CollaboratorID(actorUUID)
		event.Detail = detail.String
		out = append(out, event)
	}
	return out, rows.Err()
}
