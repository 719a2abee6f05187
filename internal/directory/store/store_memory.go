package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tramita/internal/directory/models"
	id "tramita/pkg/domain"
	"tramita/pkg/platform/sentinel"
)

// InMemorySectorStore keeps sectors in a map guarded by a RWMutex.
type InMemorySectorStore struct {
	mu      sync.RWMutex
	sectors map[id.SectorID]*models.Sector
}

func NewInMemorySectorStore() *InMemorySectorStore {
	return &InMemorySectorStore{sectors: make(map[id.SectorID]*models.Sector)}
}

func (s *InMemorySectorStore) Create(_ context.Context, sector *models.Sector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sectors[sector.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *sector
	s.sectors[sector.ID] = &cp
	return nil
}

func (s *InMemorySectorStore) FindByID(_ context.Context, sectorID id.SectorID) (*models.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sector, ok := s.sectors[sectorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sector
	return &cp, nil
}

func (s *InMemorySectorStore) Rename(_ context.Context, sectorID id.SectorID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sector, ok := s.sectors[sectorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	return sector.Rename(name)
}

func (s *InMemorySectorStore) List(_ context.Context) ([]*models.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Sector, 0, len(s.sectors))
	for _, sector := range s.sectors {
		cp := *sector
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Compare(out[i].Name, out[j].Name) < 0
	})
	return out, nil
}

// InMemoryCollaboratorStore keeps collaborators in a map guarded by a RWMutex.
type InMemoryCollaboratorStore struct {
	mu            sync.RWMutex
	collaborators map[id.CollaboratorID]*models.Collaborator
}

func NewInMemoryCollaboratorStore() *InMemoryCollaboratorStore {
	return &InMemoryCollaboratorStore{collaborators: make(map[id.CollaboratorID]*models.Collaborator)}
}

func (s *InMemoryCollaboratorStore) Create(_ context.Context, collaborator *models.Collaborator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collaborators[collaborator.ID]; ok {
		return sentinel.ErrConflict
	}
	cp := *collaborator
	s.collaborators[collaborator.ID] = &cp
	return nil
}

func (s *InMemoryCollaboratorStore) FindByID(_ context.Context, collabID id.CollaboratorID) (*models.Collaborator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	collaborator, ok := s.collaborators[collabID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *collaborator
	return &cp, nil
}
