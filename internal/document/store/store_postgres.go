package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tramita/internal/document/models"
	id "tramita/pkg/domain"
	"tramita/pkg/platform/sentinel"
	txcontext "tramita/pkg/platform/tx"
)

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func execer(ctx context.Context, db *sql.DB) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return db
}

// PostgresDocumentStore persists documents in PostgreSQL.
type PostgresDocumentStore struct {
	db *sql.DB
}

func NewPostgresDocumentStore(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

const documentColumns = `id, process_id, name, kind, content, source_html,
	content_hash, verification_code, signer_name, signer_role, signed_at, created_at`

func (s *PostgresDocumentStore) Create(ctx context.Context, document *models.Document) error {
	_, err := execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		documentArgs(document)...,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *PostgresDocumentStore) Update(ctx context.Context, document *models.Document) error {
	res, err := execer(ctx, s.db).ExecContext(ctx,
		`UPDATE documents SET name = $2, kind = $3, content = $4, source_html = $5,
		    content_hash = $6, verification_code = $7, signer_name = $8,
		    signer_role = $9, signed_at = $10
		 WHERE id = $1`,
		uuid.UUID(document.ID), document.Name, string(document.Kind), document.Content,
		nullString(document.SourceHTML), nullString(document.ContentHash),
		nullString(document.VerificationCode), nullString(document.SignerName),
		nullString(document.SignerRole), document.SignedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresDocumentStore) Delete(ctx context.Context, documentID id.DocumentID) error {
	res, err := execer(ctx, s.db).ExecContext(ctx,
		`DELETE FROM documents WHERE id = $1`, uuid.UUID(documentID),
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresDocumentStore) FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`,
		uuid.UUID(documentID),
	)
	return scanDocument(row)
}

func (s *PostgresDocumentStore) FindByVerificationCode(ctx context.Context, code string) (*models.Document, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE verification_code = $1`,
		code,
	)
	return scanDocument(row)
}

func (s *PostgresDocumentStore) ListByProcess(ctx context.Context, processID id.ProcessID) ([]*models.Document, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE process_id = $1 ORDER BY created_at ASC`,
		uuid.UUID(processID),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, document)
	}
	return out, rows.Err()
}

func documentArgs(document *models.Document) []any {
	return []any{
		uuid.UUID(document.ID), uuid.UUID(document.ProcessID), document.Name,
		string(document.Kind), document.Content, nullString(document.SourceHTML),
		nullString(document.ContentHash), nullString(document.VerificationCode),
		nullString(document.SignerName), nullString(document.SignerRole),
		document.SignedAt, document.CreatedAt,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		document   models.Document
		docUUID    uuid.UUID
		procUUID   uuid.UUID
		kind       string
		sourceHTML sql.NullString
		hash       sql.NullString
		code       sql.NullString
		signerName sql.NullString
		signerRole sql.NullString
		signedAt   sql.NullTime
	)
	err := row.Scan(&docUUID, &procUUID, &document.Name, &kind, &document.Content,
		&sourceHTML, &hash, &code, &signerName, &signerRole, &signedAt, &document.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	document.ID = id.DocumentID(docUUID)
	document.ProcessID = id.ProcessID(procUUID)
	document.Kind = models.Kind(kind)
	document.SourceHTML = sourceHTML.String
	document.ContentHash = hash.String
	document.VerificationCode = code.String
	document.SignerName = signerName.String
	document.SignerRole = signerRole.String
	if signedAt.Valid {
		t := signedAt.Time
		document.SignedAt = &t
	}
	return &document, nil
}
