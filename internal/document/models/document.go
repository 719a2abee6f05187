// Package models defines documents attached to processes and their
// integrity metadata.
package models

import (
	"strings"
	"time"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
)

// Kind distinguishes editable internal documents from immutable external blobs.
type Kind string

const (
	KindInternal Kind = "internal"
	KindExternal Kind = "external"
)

// ParseKind constructs a Kind from external input.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k != KindInternal && k != KindExternal {
		return "", dErrors.New(dErrors.CodeValidation, "invalid document kind: "+s)
	}
	return k, nil
}

// Document is content attached to a process.
//
// Invariants:
//   - ContentHash always equals the SHA-256 hex digest of Content; any write
//     to Content recomputes it in the same transaction
//   - VerificationCode, once issued by signing, is stable and resolves back
//     to this document; it is cleared only when unsigned content changes
//   - A document is signed iff SignerName is set; external documents never
//     carry an editable source
type Document struct {
	ID               id.DocumentID `json:"id"`
	ProcessID        id.ProcessID  `json:"process_id"`
	Name             string        `json:"name"`
	Kind             Kind          `json:"kind"`
	Content          []byte        `json:"-"`
	SourceHTML       string        `json:"-"`
	ContentHash      string        `json:"content_hash,omitempty"`
	VerificationCode string        `json:"verification_code,omitempty"`
	SignerName       string        `json:"signer_name,omitempty"`
	SignerRole       string        `json:"signer_role,omitempty"`
	SignedAt         *time.Time    `json:"signed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// NewDocument validates and builds a document. The caller supplies the
// already-computed content hash so the hash invariant holds from birth.
func NewDocument(docID id.DocumentID, processID id.ProcessID, name string, kind Kind,
	content []byte, sourceHTML, contentHash string, now time.Time) (*Document, error) {

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document name is required")
	}
	if kind != KindInternal && kind != KindExternal {
		return nil, dErrors.New(dErrors.CodeValidation, "document kind is required")
	}
	if kind == KindExternal && sourceHTML != "" {
		return nil, dErrors.New(dErrors.CodeValidation, "external documents cannot carry an editable source")
	}
	if len(content) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "document content is required")
	}
	return &Document{
		ID:          docID,
		ProcessID:   processID,
		Name:        name,
		Kind:        kind,
		Content:     content,
		SourceHTML:  sourceHTML,
		ContentHash: contentHash,
		CreatedAt:   now,
	}, nil
}

// Signed reports whether a signature has been applied.
func (d *Document) Signed() bool { return d.SignerName != "" }
