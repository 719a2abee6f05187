// Package service manages the organizational directory: sectors and
// collaborator accounts. Directory writes are administrative operations.
package service

import (
	"context"
	"errors"
	"log/slog"

	"tramita/internal/auth"
	"tramita/internal/directory/models"
	dirstore "tramita/internal/directory/store"
	"tramita/internal/platform/database"
	"tramita/internal/platform/metrics"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
	"tramita/pkg/requestcontext"
)

type Service struct {
	sectors       dirstore.SectorStore
	collaborators dirstore.CollaboratorStore
	credentials   auth.CredentialStore
	tx            database.Tx
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(sectors dirstore.SectorStore, collaborators dirstore.CollaboratorStore,
	credentials auth.CredentialStore, tx database.Tx, opts ...Option) *Service {

	s := &Service{
		sectors:       sectors,
		collaborators: collaborators,
		credentials:   credentials,
		tx:            tx,
		logger:        slog.Default(),
	}
	if s.tx == nil {
		s.tx = database.NewInMemoryTx()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireAdmin(ctx context.Context) (*models.Collaborator, error) {
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no authenticated actor")
	}
	actor, err := s.collaborators.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "unknown collaborator")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load actor")
	}
	if !actor.HasCapability(models.CapabilityAdmin) {
		s.metrics.IncrementAccessDenied("directory_admin")
		return nil, dErrors.New(dErrors.CodePermissionDenied, "directory changes require the admin capability")
	}
	return actor, nil
}

// CreateSector registers an organizational unit.
func (s *Service) CreateSector(ctx context.Context, name, parentUnit string) (*models.Sector, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	sector, err := models.NewSector(id.NewSectorID(), name, parentUnit, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.sectors.Create(ctx, sector); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "sector already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create sector")
	}
	s.logger.InfoContext(ctx, "sector created", slog.String("sector_id", sector.ID.String()))
	return sector, nil
}

// RenameSector changes a sector's display name.
func (s *Service) RenameSector(ctx context.Context, sectorID id.SectorID, name string) error {
	if _, err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.sectors.Rename(ctx, sectorID, name); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "sector not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to rename sector")
	}
	return nil
}

// ListSectors returns all sectors; any authenticated actor may browse the
// directory to pick routing destinations.
func (s *Service) ListSectors(ctx context.Context) ([]*models.Sector, error) {
	if requestcontext.ActorID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no authenticated actor")
	}
	sectors, err := s.sectors.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sectors")
	}
	return sectors, nil
}

// CreateCollaboratorInput carries a new account and its initial password.
type CreateCollaboratorInput struct {
	Name         string
	Role         string
	HomeSector   id.SectorID
	Capabilities []string
	Password     string
}

// CreateCollaborator registers an account with its capabilities and initial
// credentials in one transaction.
func (s *Service) CreateCollaborator(ctx context.Context, in CreateCollaboratorInput) (*models.Collaborator, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	caps := models.CapabilitySet{}
	for _, code := range in.Capabilities {
		capability, ok := models.ParseCapability(code)
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown capability: "+code)
		}
		caps[capability] = struct{}{}
	}

	if _, err := s.sectors.FindByID(ctx, in.HomeSector); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "home sector does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load home sector")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	collaborator, err := models.NewCollaborator(id.NewCollaboratorID(), in.Name, in.Role,
		in.HomeSector, caps, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.collaborators.Create(ctx, collaborator); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeConflict, "collaborator already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create collaborator")
		}
		return s.credentials.Upsert(ctx, auth.Credential{
			CollaboratorID: collaborator.ID,
			PasswordHash:   hash,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "collaborator created",
		slog.String("collaborator_id", collaborator.ID.String()))
	return collaborator, nil
}

// GetCollaborator returns one account.
func (s *Service) GetCollaborator(ctx context.Context, collaboratorID id.CollaboratorID) (*models.Collaborator, error) {
	if requestcontext.ActorID(ctx).IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no authenticated actor")
	}
	collaborator, err := s.collaborators.FindByID(ctx, collaboratorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "collaborator not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load collaborator")
	}
	return collaborator, nil
}
