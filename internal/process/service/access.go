package service

import (
	"context"
	"errors"
	"log/slog"

	"tramita/internal/audit"
	"tramita/internal/policy"
	"tramita/internal/process/models"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
	"tramita/pkg/requestcontext"
)

// GrantAccess gives a collaborator explicit view access to a process. Only
// actors who can themselves view the process may extend access; granting is
// idempotent.
func (s *Service) GrantAccess(ctx context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) (*models.AccessGrant, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}

	process, err := s.findProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	actorGrant, err := s.hasGrant(ctx, processID, actor.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanView(actor, process, actorGrant); !d.Allowed {
		return nil, s.denied("grant_access", d.Reason)
	}

	if collaboratorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "collaborator id is required")
	}
	grantee, err := s.collaborators.FindByID(ctx, collaboratorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "collaborator not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load collaborator")
	}
	if grantee.ID == process.Creator {
		return nil, dErrors.New(dErrors.CodeValidation, "creator already has access")
	}

	now := requestcontext.Now(ctx)
	grant := &models.AccessGrant{
		ID:           id.NewGrantID(),
		ProcessID:    processID,
		Collaborator: grantee.ID,
		GrantedBy:    actor.ID,
		CreatedAt:    now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.grants.Create(ctx, grant); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nil
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record access grant")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionAccessGranted,
			ProcessID: processID,
			ActorID:   actor.ID,
			Detail:    "grantee " + grantee.ID.String(),
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "access granted",
		slog.String("process_id", processID.String()),
		slog.String("grantee", grantee.ID.String()),
	)
	return grant, nil
}

// RevokeAccess removes a collaborator's explicit grant.
func (s *Service) RevokeAccess(ctx context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) error {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return err
	}

	process, err := s.findProcess(ctx, processID)
	if err != nil {
		return err
	}

	actorGrant, err := s.hasGrant(ctx, processID, actor.ID)
	if err != nil {
		return err
	}
	if d := policy.CanView(actor, process, actorGrant); !d.Allowed {
		return s.denied("revoke_access", d.Reason)
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.grants.Delete(ctx, processID, collaboratorID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "no grant for that collaborator")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove access grant")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionAccessRevoked,
			ProcessID: processID,
			ActorID:   actor.ID,
			Detail:    "grantee " + collaboratorID.String(),
			Timestamp: now,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "access revoked",
		slog.String("process_id", processID.String()),
		slog.String("grantee", collaboratorID.String()),
	)
	return nil
}

// ListGrants returns the explicit grants on a process, visible to anyone who
// can view the process itself.
func (s *Service) ListGrants(ctx context.Context, processID id.ProcessID) ([]*models.AccessGrant, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}

	process, err := s.findProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	actorGrant, err := s.hasGrant(ctx, processID, actor.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanView(actor, process, actorGrant); !d.Allowed {
		return nil, s.denied("list_grants", d.Reason)
	}

	grants, err := s.grants.ListByProcess(ctx, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list access grants")
	}
	return grants, nil
}
