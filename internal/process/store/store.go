// Package store persists processes, their movement ledger and access grants.
// Stores return sentinel errors; services translate them to domain errors.
package store

import (
	"context"

	"tramita/internal/process/models"
	id "tramita/pkg/domain"
)

// ListFilter narrows process listings. A nil Archived means both archived
// and active processes.
type ListFilter struct {
	Text     string
	Archived *bool
}

type ProcessStore interface {
	Create(ctx context.Context, process *models.Process) error
	FindByID(ctx context.Context, processID id.ProcessID) (*models.Process, error)
	SetArchived(ctx context.Context, processID id.ProcessID, archived bool) error
	// CountCreatedInYear supports the NN/YYYY sequential numbering.
	CountCreatedInYear(ctx context.Context, year int) (int, error)
	List(ctx context.Context, filter ListFilter) ([]*models.Process, error)
}

type MovementStore interface {
	Append(ctx context.Context, movement *models.Movement) error
	// ListByProcess returns the full ledger in ascending creation order.
	ListByProcess(ctx context.Context, processID id.ProcessID) ([]*models.Movement, error)
	// DeactivateAllForProcess clears the active flag on every movement of the
	// process. Called inside the routing transaction before inserting
	// successors, so classification never sees stale active rows.
	DeactivateAllForProcess(ctx context.Context, processID id.ProcessID) error
}

type GrantStore interface {
	Create(ctx context.Context, grant *models.AccessGrant) error
	Delete(ctx context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) error
	ListByProcess(ctx context.Context, processID id.ProcessID) ([]*models.AccessGrant, error)
	Exists(ctx context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) (bool, error)
}
