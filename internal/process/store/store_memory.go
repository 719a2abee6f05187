package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tramita/internal/process/models"
	id "tramita/pkg/domain"
	"tramita/pkg/platform/sentinel"
)

// InMemoryProcessStore keeps processes in a map guarded by a RWMutex.
type InMemoryProcessStore struct {
	mu        sync.RWMutex
	processes map[id.ProcessID]*models.Process
}

func NewInMemoryProcessStore() *InMemoryProcessStore {
	return &InMemoryProcessStore{processes: make(map[id.ProcessID]*models.Process)}
}

func (s *InMemoryProcessStore) Create(_ context.Context, process *models.Process) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.processes[process.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.processes {
		if existing.Number == process.Number {
			return sentinel.ErrConflict
		}
	}
	cp := *process
	s.processes[process.ID] = &cp
	return nil
}

func (s *InMemoryProcessStore) FindByID(_ context.Context, processID id.ProcessID) (*models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	process, ok := s.processes[processID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *process
	return &cp, nil
}

func (s *InMemoryProcessStore) SetArchived(_ context.Context, processID id.ProcessID, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	process, ok := s.processes[processID]
	if !ok {
		return sentinel.ErrNotFound
	}
	process.Archived = archived
	return nil
}

func (s *InMemoryProcessStore) CountCreatedInYear(_ context.Context, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, process := range s.processes {
		if process.CreatedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryProcessStore) List(_ context.Context, filter ListFilter) ([]*models.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(filter.Text))
	var out []*models.Process
	for _, process := range s.processes {
		if filter.Archived != nil && process.Archived != *filter.Archived {
			continue
		}
		if needle != "" && !matchesText(process, needle) {
			continue
		}
		cp := *process
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func matchesText(process *models.Process, needle string) bool {
	return strings.Contains(strings.ToLower(process.Number), needle) ||
		strings.Contains(strings.ToLower(process.Type), needle) ||
		strings.Contains(strings.ToLower(process.Specification), needle) ||
		strings.Contains(strings.ToLower(process.InterestedParty), needle)
}

// InMemoryMovementStore keeps per-process ledgers in insertion order.
type InMemoryMovementStore struct {
	mu      sync.RWMutex
	ledgers map[id.ProcessID][]*models.Movement
}

func NewInMemoryMovementStore() *InMemoryMovementStore {
	return &InMemoryMovementStore{ledgers: make(map[id.ProcessID][]*models.Movement)}
}

func (s *InMemoryMovementStore) Append(_ context.Context, movement *models.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *movement
	s.ledgers[movement.ProcessID] = append(s.ledgers[movement.ProcessID], &cp)
	return nil
}

func (s *InMemoryMovementStore) ListByProcess(_ context.Context, processID id.ProcessID) ([]*models.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ledger := s.ledgers[processID]
	out := make([]*models.Movement, 0, len(ledger))
	for _, movement := range ledger {
		cp := *movement
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryMovementStore) DeactivateAllForProcess(_ context.Context, processID id.ProcessID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, movement := range s.ledgers[processID] {
		movement.Active = false
	}
	return nil
}

// InMemoryGrantStore keeps access grants in a map guarded by a RWMutex.
type InMemoryGrantStore struct {
	mu     sync.RWMutex
	grants map[id.ProcessID][]*models.AccessGrant
}

func NewInMemoryGrantStore() *InMemoryGrantStore {
	return &InMemoryGrantStore{grants: make(map[id.ProcessID][]*models.AccessGrant)}
}

func (s *InMemoryGrantStore) Create(_ context.Context, grant *models.AccessGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.grants[grant.ProcessID] {
		if existing.Collaborator == grant.Collaborator {
			return sentinel.ErrConflict
		}
	}
	cp := *grant
	s.grants[grant.ProcessID] = append(s.grants[grant.ProcessID], &cp)
	return nil
}

func (s *InMemoryGrantStore) Delete(_ context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	grants := s.grants[processID]
	for i, grant := range grants {
		if grant.Collaborator == collaboratorID {
			s.grants[processID] = append(grants[:i], grants[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryGrantStore) ListByProcess(_ context.Context, processID id.ProcessID) ([]*models.AccessGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grants := s.grants[processID]
	out := make([]*models.AccessGrant, 0, len(grants))
	for _, grant := range grants {
		cp := *grant
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryGrantStore) Exists(_ context.Context, processID id.ProcessID, collaboratorID id.CollaboratorID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, grant := range s.grants[processID] {
		if grant.Collaborator == collaboratorID {
			return true, nil
		}
	}
	return false, nil
}
