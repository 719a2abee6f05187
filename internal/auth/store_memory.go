package auth

import (
	"context"
	"sync"

	id "tramita/pkg/domain"
	"tramita/pkg/platform/sentinel"
)

// InMemoryCredentialStore keeps hashes in a map guarded by a RWMutex.
type InMemoryCredentialStore struct {
	mu          sync.RWMutex
	credentials map[id.CollaboratorID][]byte
}

func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{credentials: make(map[id.CollaboratorID][]byte)}
}

func (s *InMemoryCredentialStore) Upsert(_ context.Context, credential Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := make([]byte, len(credential.PasswordHash))
	copy(hash, credential.PasswordHash)
	s.credentials[credential.CollaboratorID] = hash
	return nil
}

func (s *InMemoryCredentialStore) FindByCollaborator(_ context.Context, collaboratorID id.CollaboratorID) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hash, ok := s.credentials[collaboratorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := make([]byte, len(hash))
	copy(cp, hash)
	return &Credential{CollaboratorID: collaboratorID, PasswordHash: cp}, nil
}
