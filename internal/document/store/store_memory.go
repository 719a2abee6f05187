package store

import (
	"context"
	"sort"
	"sync"

	"tramita/internal/document/models"
	id "tramita/pkg/domain"
	"tramita/pkg/platform/sentinel"
)

// InMemoryDocumentStore keeps documents in a map guarded by a RWMutex.
type InMemoryDocumentStore struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*models.Document
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{documents: make(map[id.DocumentID]*models.Document)}
}

func (s *InMemoryDocumentStore) Create(_ context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[document.ID]; ok {
		return sentinel.ErrConflict
	}
	s.documents[document.ID] = copyDocument(document)
	return nil
}

func (s *InMemoryDocumentStore) Update(_ context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[document.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.documents[document.ID] = copyDocument(document)
	return nil
}

func (s *InMemoryDocumentStore) Delete(_ context.Context, documentID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.documents, documentID)
	return nil
}

func (s *InMemoryDocumentStore) FindByID(_ context.Context, documentID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	document, ok := s.documents[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyDocument(document), nil
}

func (s *InMemoryDocumentStore) FindByVerificationCode(_ context.Context, code string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, document := range s.documents {
		if document.VerificationCode != "" && document.VerificationCode == code {
			return copyDocument(document), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryDocumentStore) ListByProcess(_ context.Context, processID id.ProcessID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Document
	for _, document := range s.documents {
		if document.ProcessID == processID {
			out = append(out, copyDocument(document))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func copyDocument(document *models.Document) *models.Document {
	cp := *document
	cp.Content = make([]byte, len(document.Content))
	copy(cp.Content, document.Content)
	if document.SignedAt != nil {
		signedAt := *document.SignedAt
		cp.SignedAt = &signedAt
	}
	return &cp
}
