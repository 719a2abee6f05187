package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"tramita/internal/audit"
	"tramita/internal/policy"
	"tramita/internal/process/models"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
	"tramita/pkg/requestcontext"
)

// RouteInput describes one routing action.
type RouteInput struct {
	ProcessID    id.ProcessID
	ToSector     id.SectorID
	Observations string
	// KeepOpenAtOrigin records a second active movement pinning the process
	// at the sending sector, so it stays visible there after the transfer.
	KeepOpenAtOrigin bool
}

// RouteProcess moves a process to another sector. Inside one transaction all
// currently active movements are deactivated, then the keep-open marker (when
// requested) and the main movement are appended. The process's derived
// location changes atomically or not at all.
func (s *Service) RouteProcess(ctx context.Context, in RouteInput) ([]*models.Movement, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}

	process, err := s.findProcess(ctx, in.ProcessID)
	if err != nil {
		return nil, err
	}

	hasGrant, err := s.hasGrant(ctx, process.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanRoute(actor, process, hasGrant); !d.Allowed {
		if process.Archived {
			return nil, dErrors.New(dErrors.CodeInvalidState, "cannot route an archived process")
		}
		return nil, s.denied("route", d.Reason)
	}

	if in.ToSector.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "destination sector is required")
	}
	if _, err := s.sectors.FindByID(ctx, in.ToSector); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "destination sector does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load destination sector")
	}

	origin := requestcontext.ActiveSector(ctx)
	if origin.IsNil() {
		origin = actor.HomeSector
	}
	if origin == in.ToSector {
		return nil, dErrors.New(dErrors.CodeValidation, "destination sector is the current sector")
	}

	now := requestcontext.Now(ctx)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.movements.DeactivateAllForProcess(ctx, process.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to supersede active movements")
		}

		if in.KeepOpenAtOrigin {
			keep := &models.Movement{
				ID:           id.NewMovementID(),
				ProcessID:    process.ID,
				FromSector:   origin,
				ToSector:     origin,
				Observations: models.ObservationKeptAtOrigin,
				KeepOpen:     true,
				Active:       true,
				CreatedAt:    now,
			}
			if err := s.movements.Append(ctx, keep); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record keep-open movement")
			}
		}

		main := &models.Movement{
			ID:           id.NewMovementID(),
			ProcessID:    process.ID,
			FromSector:   origin,
			ToSector:     in.ToSector,
			Observations: strings.TrimSpace(in.Observations),
			KeepOpen:     in.KeepOpenAtOrigin,
			Active:       true,
			CreatedAt:    now,
		}
		if err := s.movements.Append(ctx, main); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record movement")
		}

		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionProcessRouted,
			ProcessID: process.ID,
			ActorID:   actor.ID,
			Detail:    "to sector " + in.ToSector.String(),
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementRoutings()
	s.logger.InfoContext(ctx, "process routed",
		slog.String("process_id", process.ID.String()),
		slog.String("to_sector", in.ToSector.String()),
		slog.Bool("keep_open", in.KeepOpenAtOrigin),
	)

	ledger, err := s.movements.ListByProcess(ctx, process.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load movement ledger")
	}
	return ledger, nil
}

// ArchiveProcess closes a process to further routing and document changes.
func (s *Service) ArchiveProcess(ctx context.Context, processID id.ProcessID) error {
	return s.setArchived(ctx, processID, true)
}

// ReopenProcess returns an archived process to circulation.
func (s *Service) ReopenProcess(ctx context.Context, processID id.ProcessID) error {
	return s.setArchived(ctx, processID, false)
}

func (s *Service) setArchived(ctx context.Context, processID id.ProcessID, archived bool) error {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return err
	}

	process, err := s.findProcess(ctx, processID)
	if err != nil {
		return err
	}

	operation := "archive"
	action := audit.ActionProcessArchived
	if !archived {
		operation = "reopen"
		action = audit.ActionProcessReopened
	}

	if d := policy.CanArchive(actor, process); !d.Allowed {
		return s.denied(operation, d.Reason)
	}
	if process.Archived == archived {
		return dErrors.New(dErrors.CodeInvalidState, "process is already in the requested state")
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.processes.SetArchived(ctx, processID, archived); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "process not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update archive state")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:    action,
			ProcessID: processID,
			ActorID:   actor.ID,
			Timestamp: now,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "process archive state changed",
		slog.String("process_id", processID.String()),
		slog.Bool("archived", archived),
	)
	return nil
}

// findProcess loads a process, mapping a missing row to CodeNotFound.
func (s *Service) findProcess(ctx context.Context, processID id.ProcessID) (*models.Process, error) {
	if processID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "process id is required")
	}
	process, err := s.processes.FindByID(ctx, processID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "process not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load process")
	}
	return process, nil
}
