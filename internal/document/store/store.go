// Package store persists documents and resolves verification codes.
package store

import (
	"context"

	"tramita/internal/document/models"
	id "tramita/pkg/domain"
)

type DocumentStore interface {
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, documentID id.DocumentID) error
	FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error)
	// FindByVerificationCode resolves a stable code back to its signed
	// document. Codes are unique across the whole system.
	FindByVerificationCode(ctx context.Context, code string) (*models.Document, error)
	ListByProcess(ctx context.Context, processID id.ProcessID) ([]*models.Document, error)
}

// CodeCache is a read-through cache in front of FindByVerificationCode for
// the public verification endpoint, which takes anonymous traffic. A nil
// implementation is valid and means no caching.
type CodeCache interface {
	Get(ctx context.Context, code string) (id.DocumentID, bool)
	Set(ctx context.Context, code string, documentID id.DocumentID)
	Invalidate(ctx context.Context, code string)
}
