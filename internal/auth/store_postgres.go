package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "tramita/pkg/domain"
	"tramita/pkg/platform/sentinel"
	txcontext "tramita/pkg/platform/tx"
)

// PostgresCredentialStore persists bcrypt hashes in PostgreSQL.
type PostgresCredentialStore struct {
	db *sql.DB
}

func NewPostgresCredentialStore(db *sql.DB) *PostgresCredentialStore {
	return &PostgresCredentialStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresCredentialStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresCredentialStore) Upsert(ctx context.Context, credential Credential) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO collaborator_credentials (collaborator_id, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (collaborator_id) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		uuid.UUID(credential.CollaboratorID), credential.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (s *PostgresCredentialStore) FindByCollaborator(ctx context.Context, collaboratorID id.CollaboratorID) (*Credential, error) {
	var hash []byte
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT password_hash FROM collaborator_credentials WHERE collaborator_id = $1`,
		uuid.UUID(collaboratorID),
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &Credential{CollaboratorID: collaboratorID, PasswordHash: hash}, nil
}
