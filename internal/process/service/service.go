// Package service implements the routing engine: process creation with
// sequential numbering, sector-to-sector routing over the append-only
// movement ledger, archive/reopen, access grants and the classified
// per-sector views.
package service

import (
	"context"
	"errors"
	"log/slog"

	"tramita/internal/audit"
	dirstore "tramita/internal/directory/store"
	"tramita/internal/platform/database"
	"tramita/internal/platform/metrics"
	"tramita/internal/process/store"

	dirmodels "tramita/internal/directory/models"
	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
)

// Service orchestrates process lifecycle. Every mutating operation runs in a
// single store transaction so the derived current-sector view is never
// observable half-applied.
type Service struct {
	processes     store.ProcessStore
	movements     store.MovementStore
	grants        store.GrantStore
	sectors       dirstore.SectorStore
	collaborators dirstore.CollaboratorStore
	tx            database.Tx
	logger        *slog.Logger
	metrics       *metrics.Metrics
	audit         *audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAudit(publisher *audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// New constructs the routing engine. A nil tx falls back to the in-memory
// serializer, which is what the unit tests use.
func New(processes store.ProcessStore, movements store.MovementStore, grants store.GrantStore,
	sectors dirstore.SectorStore, collaborators dirstore.CollaboratorStore,
	tx database.Tx, opts ...Option) *Service {

	s := &Service{
		processes:     processes,
		movements:     movements,
		grants:        grants,
		sectors:       sectors,
		collaborators: collaborators,
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

// loadActor resolves the acting collaborator or fails with unauthenticated.
func (s *Service) loadActor(ctx context.Context, actorID id.CollaboratorID) (*dirmodels.Collaborator, error) {
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
	return actor, nil
}

func (s *Service) hasGrant(ctx context.Context, processID id.ProcessID, actorID id.CollaboratorID) (bool, error) {
	ok, err := s.grants.Exists(ctx, processID, actorID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check access grant")
	}
	return ok, nil
}

func (s *Service) denied(operation, reason string) error {
	s.metrics.IncrementAccessDenied(operation)
	return dErrors.New(dErrors.CodePermissionDenied, reason)
}
