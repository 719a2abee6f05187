// Package auth covers actor authentication: password credentials checked
// with bcrypt and the signed tokens that carry actor identity and working
// sector between requests. Signing a document re-verifies the password even
// on an authenticated session.
package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
)

// Credential pairs a collaborator with their bcrypt password hash.
type Credential struct {
	CollaboratorID id.CollaboratorID
	PasswordHash   []byte
}

type CredentialStore interface {
	Upsert(ctx context.Context, credential Credential) error
	FindByCollaborator(ctx context.Context, collaboratorID id.CollaboratorID) (*Credential, error)
}

// CredentialVerifier re-checks a collaborator's password. The document
// service depends on this interface so tests can stub the check.
type CredentialVerifier interface {
	Verify(ctx context.Context, collaboratorID id.CollaboratorID, password string) error
}

// BcryptVerifier verifies passwords against stored bcrypt hashes.
type BcryptVerifier struct {
	store CredentialStore
}

func NewBcryptVerifier(store CredentialStore) *BcryptVerifier {
	return &BcryptVerifier{store: store}
}

func (v *BcryptVerifier) Verify(ctx context.Context, collaboratorID id.CollaboratorID, password string) error {
	if password == "" {
		return dErrors.New(dErrors.CodeUnauthenticated, "password is required")
	}
	credential, err := v.store.FindByCollaborator(ctx, collaboratorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthenticated, "no credentials on file")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credentials")
	}
	if err := bcrypt.CompareHashAndPassword(credential.PasswordHash, []byte(password)); err != nil {
		return dErrors.New(dErrors.CodeUnauthenticated, "invalid credentials")
	}
	return nil
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) ([]byte, error) {
	if len(password) < 8 {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return hash, nil
}
