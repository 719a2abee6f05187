package service

import (
	"context"
	"errors"
	"log/slog"

	"tramita/internal/audit"
	"tramita/internal/process/models"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
	"tramita/pkg/requestcontext"
)

// CreateProcessInput carries the caller-supplied fields of a new process.
// The origin sector comes from the request context (the actor's working
// sector), falling back to the actor's home sector.
type CreateProcessInput struct {
	Type            string
	Specification   string
	InterestedParty string
	AccessTier      string
	// Grantees receive an explicit access grant at creation time. Only
	// meaningful for restricted and confidential processes; ignored entries
	// that match the creator are skipped since authorship already grants
	// access.
	Grantees []id.CollaboratorID
}

// CreateProcess assigns the next sequential NN/YYYY number, persists the
// process and its initial movement, and records grants for the listed
// collaborators. Everything happens in one transaction: a failure to write
// the initial movement rolls back the process row, so no process ever exists
// without a ledger.
func (s *Service) CreateProcess(ctx context.Context, in CreateProcessInput) (*models.Process, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}

	tier, err := models.ParseAccessTier(in.AccessTier)
	if err != nil {
		return nil, err
	}

	origin := requestcontext.ActiveSector(ctx)
	if origin.IsNil() {
		origin = actor.HomeSector
	}
	if _, err := s.sectors.FindByID(ctx, origin); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "origin sector does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load origin sector")
	}

	now := requestcontext.Now(ctx)
	var process *models.Process

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		count, err := s.processes.CountCreatedInYear(ctx, now.Year())
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count processes for numbering")
		}
		number := models.FormatNumber(count+1, now.Year())

		process, err = models.NewProcess(id.NewProcessID(), number, in.Type, in.Specification,
			in.InterestedParty, origin, actor.ID, tier, now)
		if err != nil {
			return err
		}

		if err := s.processes.Create(ctx, process); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "process number already taken")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create process")
		}

		initial := models.NewInitialMovement(id.NewMovementID(), process.ID, origin, now)
		if err := s.movements.Append(ctx, initial); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record initial movement")
		}

		if !process.IsPublic() {
			for _, grantee := range in.Grantees {
				if grantee == actor.ID || grantee.IsNil() {
					continue
				}
				grant := &models.AccessGrant{
					ID:           id.NewGrantID(),
					ProcessID:    process.ID,
					Collaborator: grantee,
					GrantedBy:    actor.ID,
					CreatedAt:    now,
				}
				if err := s.grants.Create(ctx, grant); err != nil && !errors.Is(err, sentinel.ErrConflict) {
					return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record access grant")
				}
			}
		}

		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionProcessCreated,
			ProcessID: process.ID,
			ActorID:   actor.ID,
			Detail:    "number " + number,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementProcessesCreated()
	s.logger.InfoContext(ctx, "process created",
		slog.String("process_id", process.ID.String()),
		slog.String("number", process.Number),
		slog.String("tier", string(process.AccessTier)),
	)
	return process, nil
}
