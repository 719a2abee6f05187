package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"tramita/internal/process/models"
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

// PostgresProcessStore persists processes in PostgreSQL.
type PostgresProcessStore struct {
	db *sql.DB
}

func NewPostgresProcessStore(db *sql.DB) *PostgresProcessStore {
	return &PostgresProcessStore{db: db}
}

func (s *PostgresProcessStore) Create(ctx context.Context, process *models.Process) error {
	_, err := execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO processes (id, number, type, specification, interested_party,
		    origin_sector_id, creator_id, access_tier, archived, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(process.ID), process.Number, process.Type, process.Specification,
		process.InterestedParty, uuid.UUID(process.OriginSector), uuid.UUID(process.Creator),
		string(process.AccessTier), process.Archived, process.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create process: %w", err)
	}
	return nil
}

func (s *PostgresProcessStore) FindByID(ctx context.Context, processID id.ProcessID) (*models.Process, error) {
	row := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, number, type, specification, interested_party,
		        origin_sector_id, creator_id, access_tier, archived, created_at
		 FROM processes WHERE id = $1`,
		uuid.UUID(processID),
	)
	return scanProcess(row)
}

func (s *PostgresProcessStore) SetArchived(ctx context.Context, processID id.ProcessID, archived bool) error {
	res, err := execer(ctx, s.db).ExecContext(ctx,
		`UPDATE processes SET archived = $2 WHERE id = $1`,
		uuid.UUID(processID), archived,
	)
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set archived: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProcessStore) CountCreatedInYear(ctx context.Context, year int) (int, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var count int
	err := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processes WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count processes in year: %w", err)
	}
	return count, nil
}

func (s *PostgresProcessStore) List(ctx context.Context, filter ListFilter) ([]*models.Process, error) {
	query := `SELECT id, number, type, specification, interested_party,
	                 origin_sector_id, creator_id, access_tier, archived, created_at
	          FROM processes WHERE 1=1`
	args := []any{}
	if filter.Archived != nil {
		args = append(args, *filter.Archived)
		query += fmt.Sprintf(" AND archived = $%d", len(args))
	}
	if filter.Text != "" {
		args = append(args, "%"+filter.Text+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (number ILIKE $%d OR type ILIKE $%d
		    OR specification ILIKE $%d OR interested_party ILIKE $%d)`, n, n, n, n)
	}
	query += " ORDER BY created_at DESC"

	rows, err := execer(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	defer rows.Close()

	var out []*models.Process
	for rows.Next() {
		process, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, process)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProcess(row rowScanner) (*models.Process, error) {
	var (
		process     models.Process
		processUUID uuid.UUID
		originUUID  uuid.UUID
		creatorUUID uuid.UUID
		tier        string
	)
	err := row.Scan(&processUUID, &process.Number, &process.Type, &process.Specification,
		&process.InterestedParty, &originUUID, &creatorUUID, &tier,
		&process.Archived, &process.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan process: %w", err)
	}
	process.ID = id.ProcessID(processUUID)
	process.OriginSector = id.SectorID(originUUID)
	process.Creator = id.CollaboratorID(creatorUUID)
	process.AccessTier = models.AccessTier(tier)
	return &process, nil
}

// PostgresMovementStore persists the routing ledger in PostgreSQL.
type PostgresMovementStore struct {
	db *sql.DB
}

func NewPostgresMovementStore(db *sql.DB) *PostgresMovementStore {
	return &PostgresMovementStore{db: db}
}

func (s *PostgresMovementStore) Append(ctx context.Context, movement *models.Movement) error {
	_, err := execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO movements (id, process_id, from_sector_id, to_sector_id,
		    observations, keep_open, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(movement.ID), uuid.UUID(movement.ProcessID),
		uuid.UUID(movement.FromSector), uuid.UUID(movement.ToSector),
		movement.Observations, movement.KeepOpen, movement.Active, movement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

func (s *PostgresMovementStore) ListByProcess(ctx context.Context, processID id.ProcessID) ([]*models.Movement, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT id, process_id, from_sector_id, to_sector_id, observations,
		        keep_open, active, created_at
		 FROM movements WHERE process_id = $1 ORDER BY created_at ASC, id ASC`,
		uuid.UUID(processID),
	)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []*models.Movement
	for rows.Next() {
		var (
			movement     models.Movement
			movementUUID uuid.UUID
			processUUID  uuid.UUID
			fromUUID     uuid.UUID
			toUUID       uuid.UUID
			observations sql.NullString
		)
		err := rows.Scan(&movementUUID, &processUUID, &fromUUID, &toUUID,
			&observations, &movement.KeepOpen, &movement.Active, &movement.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movement.ID = id.MovementID(movementUUID)
		movement.ProcessID = id.ProcessID(processUUID)
		movement.FromSector = id.SectorID(fromUUID)
		movement.ToSector = id.SectorID(toUUID)
		movement.Observations = observations.String
		out = append(out, &movement)
	}
	return out, rows.Err()
}

func (s *PostgresMovementStore) DeactivateAllForProcess(ctx context.Context, processID id.ProcessID) error {
	_, err := execer(ctx, s.db).ExecContext(ctx,
		`UPDATE movements SET active = FALSE WHERE process_id = $1 AND active`,
		uuid.UUID(processID),
	)
	if err != nil {
		return fmt.Errorf("deactivate movements: %w", err)
	}
	return nil
}

// PostgresGrantStore persists access grants in PostgreSQL.
type PostgresGrantStore struct {
	db *sql.DB
}

func NewPostgresGrantStore(db *sql.DB) *PostgresGrantStore {
	return &PostgresGrantStore{db: db}
}

func (s *PostgresGrantStore) Create(ctx context.Context, grant *models.AccessGrant) error {
	_, err := execer(ctx, s.db).ExecContext(ctx,
		`INSERT INTO access_grants (id, process_id, collaborator_id, granted_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(grant.ID), uuid.UUID(grant.ProcessID), uuid.UUID(grant.Collaborator),
		uuid.UUID(grant.GrantedBy), grant.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create grant: %w", err)
	}
	return nil
}

func (s *PostgresGrantStore) Delete(ctx context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) error {
	res, err := execer(ctx, s.db).ExecContext(ctx,
		`DELETE FROM access_grants WHERE process_id = $1 AND collaborator_id = $2`,
		uuid.UUID(processID), uuid.UUID(collaboratorID),
	)
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete grant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresGrantStore) ListByProcess(ctx context.Context, processID id.ProcessID) ([]*models.AccessGrant, error) {
	rows, err := execer(ctx, s.db).QueryContext(ctx,
		`SELECT id, process_id, collaborator_id, granted_by, created_at
		 FROM access_grants WHERE process_id = $1 ORDER BY created_at ASC`,
		uuid.UUID(processID),
	)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	defer rows.Close()

	var out []*models.AccessGrant
	for rows.Next() {
		var (
			grant      models.AccessGrant
			grantUUID  uuid.UUID
			procUUID   uuid.UUID
			collabUUID uuid.UUID
			byUUID     uuid.UUID
		)
		if err := rows.Scan(&grantUUID, &procUUID, &collabUUID, &byUUID, &grant.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		grant.ID = id.GrantID(grantUUID)
		grant.ProcessID = id.ProcessID(procUUID)
		grant.Collaborator = id.CollaboratorID(collabUUID)
		grant.GrantedBy = id.CollaboratorID(byUUID)
		out = append(out, &grant)
	}
	return out, rows.Err()
}

func (s *PostgresGrantStore) Exists(ctx context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) (bool, error) {
	var exists bool
	err := execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM access_grants WHERE process_id = $1 AND collaborator_id = $2
		 )`,
		uuid.UUID(processID), uuid.UUID(collaboratorID),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("grant exists: %w", err)
	}
	return exists, nil
}
