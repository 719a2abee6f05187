package service

import (
	"context"

	"tramita/internal/audit"
	"tramita/internal/policy"
	"tramita/internal/process/classifier"
	"tramita/internal/process/models"
	"tramita/internal/process/store"

	dirmodels "tramita/internal/directory/models"
	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/requestcontext"
)

// ProcessDetail is the full detail view: the process, its complete movement
// ledger and the audit trail.
type ProcessDetail struct {
	Process   *models.Process    `json:"process"`
	Movements []*models.Movement `json:"movements"`
	Trail     []audit.Event      `json:"trail,omitempty"`
}

// GetProcess returns the detail view of one process.
//
// Unknown IDs surface as not-found. A process that exists but sits outside
// the actor's visibility surfaces as permission-denied, not as not-found:
// process numbers are public knowledge inside the organization, so hiding
// existence would buy nothing and confuse support.
func (s *Service) GetProcess(ctx context.Context, processID id.ProcessID) (*ProcessDetail, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}

	process, err := s.findProcess(ctx, processID)
	if err != nil {
		return nil, err
	}

	hasGrant, err := s.hasGrant(ctx, processID, actor.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanView(actor, process, hasGrant); !d.Allowed {
		return nil, s.denied("view", d.Reason)
	}

	ledger, err := s.movements.ListByProcess(ctx, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load movement ledger")
	}
	trail, err := s.audit.List(ctx, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}

	return &ProcessDetail{Process: process, Movements: ledger, Trail: trail}, nil
}

// GetHistory returns the full movement ledger, oldest first, including
// superseded movements.
func (s *Service) GetHistory(ctx context.Context, processID id.ProcessID) ([]*models.Movement, error) {
	detail, err := s.GetProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	return detail.Movements, nil
}

// SectorView is the classified listing for one sector.
type SectorView struct {
	Sector    id.SectorID       `json:"sector"`
	Generated []*models.Process `json:"generated"`
	Received  []*models.Process `json:"received"`
}

// ListForSector builds the generated/received view for the actor's working
// sector. Processes the actor cannot list are omitted silently; archived
// processes appear only for actors holding the view-archived capability.
func (s *Service) ListForSector(ctx context.Context, viewerSector id.SectorID) (*SectorView, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}
	if viewerSector.IsNil() {
		viewerSector = requestcontext.ActiveSector(ctx)
	}
	if viewerSector.IsNil() {
		viewerSector = actor.HomeSector
	}

	entries, err := s.visibleProcesses(ctx, actor, store.ListFilter{})
	if err != nil {
		return nil, err
	}

	view := classifier.Classify(entries, viewerSector)
	return &SectorView{
		Sector:    viewerSector,
		Generated: view.Generated,
		Received:  view.Received,
	}, nil
}

// SearchProcesses lists visible processes matching a free-text filter against
// number, type, specification and interested party.
func (s *Service) SearchProcesses(ctx context.Context, text string, archived *bool) ([]*models.Process, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}

	entries, err := s.visibleProcesses(ctx, actor, store.ListFilter{Text: text, Archived: archived})
	if err != nil {
		return nil, err
	}

	out := make([]*models.Process, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Process)
	}
	return out, nil
}

// visibleProcesses loads processes through the filter and drops everything
// the actor may not list. Archived processes are stripped unless the actor
// holds the view-archived capability or the filter asked for them explicitly
// (which still requires the capability).
func (s *Service) visibleProcesses(ctx context.Context, actor *dirmodels.Collaborator, filter store.ListFilter) ([]classifier.ProcessWithLedger, error) {
	canArchived := policy.CanListArchived(actor).Allowed
	if filter.Archived != nil && *filter.Archived && !canArchived {
		return nil, s.denied("list_archived", "actor lacks the view-archived capability")
	}
	if !canArchived {
		active := false
		filter.Archived = &active
	}

	processes, err := s.processes.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list processes")
	}

	entries := make([]classifier.ProcessWithLedger, 0, len(processes))
	for _, process := range processes {
		hasGrant, err := s.hasGrant(ctx, process.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !policy.CanList(actor, process, hasGrant).Allowed {
			continue
		}
		ledger, err := s.movements.ListByProcess(ctx, process.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load movement ledger")
		}
		entries = append(entries, classifier.ProcessWithLedger{Process: process, Movements: ledger})
	}
	return entries, nil
}
