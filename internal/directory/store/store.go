// Package store persists the organizational directory. Stores are
// interface-driven so the policy evaluator and services stay testable against
// the in-memory implementation.
package store

import (
	"context"

	"tramita/internal/directory/models"
	id "tramita/pkg/domain"
)

type SectorStore interface {
	Create(ctx context.Context, sector *models.Sector) error
	FindByID(ctx context.Context, sectorID id.SectorID) (*models.Sector, error)
	Rename(ctx context.Context, sectorID id.SectorID, name string) error
	List(ctx context.Context) ([]*models.Sector, error)
}

type CollaboratorStore interface {
	Create(ctx context.Context, collaborator *models.Collaborator) error
	FindByID(ctx context.Context, collabID id.CollaboratorID) (*models.Collaborator, error)
}
