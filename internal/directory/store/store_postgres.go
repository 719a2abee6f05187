package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tramita/internal/directory/models"
	id "tramita/pkg/domain"
	"tramita/pkg/platform/sentinel"
	txcontext "tramita/pkg/platform/tx"
)

// PostgresSectorStore persists sectors in PostgreSQL.
type PostgresSectorStore struct {
	db *sql.DB
}

func NewPostgresSectorStore(db *sql.DB) *PostgresSectorStore {
	return &PostgresSectorStore{db: db}
}

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

func (s *PostgresSectorStore) Create(ctx context.Context, sector *models.Sector) error {
	_, err := execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO sectors (id, name, parent_unit, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.UUID(sector.ID), sector.Name, sector.ParentUnit, sector.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create sector: %w", err)
	}
	return nil
}

func (s *PostgresSectorStore) FindByID(ctx context.Context, sectorID id.SectorID) (*models.Sector, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, parent_unit, created_at FROM sectors WHERE id = $1`,
		uuid.UUID(sectorID),
	)
	return scanSector(row)
}

func (s *PostgresSectorStore) Rename(ctx context.Context, sectorID id.SectorID, name string) error {
	res, err := execer(ctx, s.db).ExecContext(ctx,
		`UPDATE sectors SET name = $2 WHERE id = $1`,
		uuid.UUID(sectorID), name,
	)
	if err != nil {
		return fmt.Errorf("rename sector: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename sector: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresSectorStore) List(ctx context.Context) ([]*models.Sector, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT id, name, parent_unit, created_at FROM sectors ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var out []*models.Sector
	for rows.Next() {
		sector, err := scanSector(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sector)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSector(row rowScanner) (*models.Sector, error) {
	var (
		sector     models.Sector
		sectorUUID uuid.UUID
		parentUnit sql.NullString
	)
	if err := row.Scan(&sectorUUID, &sector.Name, &parentUnit, &sector.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan sector: %w", err)
	}
	sector.ID = id.SectorID(sectorUUID)
	sector.ParentUnit = parentUnit.String
	return &sector, nil
}

// PostgresCollaboratorStore persists collaborators in PostgreSQL. Permission
// codes are stored as a text array.
type PostgresCollaboratorStore struct {
	db *sql.DB
}

func NewPostgresCollaboratorStore(db *sql.DB) *PostgresCollaboratorStore {
	return &PostgresCollaboratorStore{db: db}
}

func (s *PostgresCollaboratorStore) Create(ctx context.Context, collaborator *models.Collaborator) error {
	_, err := execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO collaborators (id, name, role, home_sector_id, capabilities, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(collaborator.ID), collaborator.Name, collaborator.Role,
		uuid.UUID(collaborator.HomeSector), pq.Array(collaborator.Capabilities.Codes()),
		collaborator.Active, collaborator.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create collaborator: %w", err)
	}
	return nil
}

func (s *PostgresCollaboratorStore) FindByID(ctx context.Context, collabID id.CollaboratorID) (*models.Collaborator, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, role, home_sector_id, capabilities, active, created_at
		 FROM collaborators WHERE id = $1`,
		uuid.UUID(collabID),
	)
	var (
		collaborator models.Collaborator
		collabUUID   uuid.UUID
		sectorUUID   uuid.UUID
		role         sql.NullString
		codes        []string
	)
	err := row.Scan(&collabUUID, &collaborator.Name, &role, &sectorUUID,
		pq.Array(&codes), &collaborator.Active, &collaborator.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find collaborator by id: %w", err)
	}
	collaborator.ID = id.CollaboratorID(collabUUID)
	collaborator.HomeSector = id.SectorID(sectorUUID)
	collaborator.Role = role.String
	collaborator.Capabilities = models.NewCapabilitySet(codes...)
	return &collaborator, nil
}
