package service

import (
	"context"
	"log/slog"
	"strings"

	"tramita/internal/audit"
	"tramita/internal/document/models"
	"tramita/internal/policy"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/requestcontext"
)

// AddDocumentInput carries a new attachment. Internal documents supply HTML
// source and get rendered; external documents supply raw bytes as-is.
type AddDocumentInput struct {
	ProcessID  id.ProcessID
	Name       string
	Kind       string
	SourceHTML string
	Content    []byte
}

// AddDocument attaches a document to a process and establishes the hash
// invariant from the first write.
func (s *Service) AddDocument(ctx context.Context, in AddDocumentInput) (*models.Document, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}
	process, err := s.findProcess(ctx, in.ProcessID)
	if err != nil {
		return nil, err
	}
	hasGrant, err := s.hasGrant(ctx, process.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanView(actor, process, hasGrant); !d.Allowed {
		return nil, s.denied("add_document", d.Reason)
	}
	if d := policy.CanAddDocument(actor, process, hasGrant); !d.Allowed {
		if process.Archived {
			return nil, dErrors.New(dErrors.CodeInvalidState, "cannot add documents to an archived process")
		}
		return nil, s.denied("add_document", d.Reason)
	}

	kind, err := models.ParseKind(in.Kind)
	if err != nil {
		return nil, err
	}

	content := in.Content
	sourceHTML := ""
	if kind == models.KindInternal {
		if strings.TrimSpace(in.SourceHTML) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "internal documents require HTML source")
		}
		sourceHTML = in.SourceHTML
		content, err = s.renderer.Render(sourceHTML)
		if err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	document, err := models.NewDocument(id.NewDocumentID(), process.ID, in.Name, kind,
		content, sourceHTML, ComputeHash(content), now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.documents.Create(ctx, document); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create document")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionDocumentAdded,
			ProcessID: process.ID,
			ActorID:   actor.ID,
			Detail:    "document " + document.ID.String(),
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "document added",
		slog.String("document_id", document.ID.String()),
		slog.String("process_id", process.ID.String()),
		slog.String("kind", string(kind)),
	)
	return document, nil
}

// EditDocumentInput updates name and, for internal documents, the source.
// A nil SourceHTML leaves content untouched.
type EditDocumentInput struct {
	DocumentID id.DocumentID
	Name       string
	SourceHTML *string
}

// EditDocument rewrites an internal document's source, re-rendering and
// re-hashing in the same transaction. Changing the content of a signed
// document (possible only before the process is first routed) strips the
// signature and retires the verification code.
func (s *Service) EditDocument(ctx context.Context, in EditDocumentInput) (*models.Document, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}
	document, err := s.findDocument(ctx, in.DocumentID)
	if err != nil {
		return nil, err
	}
	process, err := s.findProcess(ctx, document.ProcessID)
	if err != nil {
		return nil, err
	}
	hasGrant, err := s.hasGrant(ctx, process.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledger(ctx, process.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanView(actor, process, hasGrant); !d.Allowed {
		return nil, s.denied("edit_document", d.Reason)
	}
	if d := policy.CanModifyDocument(actor, process, document, hasGrant, ledger); !d.Allowed {
		if process.Archived || (document.Signed() && !policy.OnlyInitialMovement(ledger)) {
			return nil, dErrors.New(dErrors.CodeInvalidState, d.Reason)
		}
		return nil, s.denied("edit_document", d.Reason)
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		document.Name = name
	}

	retiredCode := ""
	if in.SourceHTML != nil {
		if document.Kind != models.KindInternal {
			return nil, dErrors.New(dErrors.CodeValidation, "external documents have no editable source")
		}
		content, err := s.renderer.Render(*in.SourceHTML)
		if err != nil {
			return nil, err
		}
		// Only a real content change retires the signature; source that
		// renders to the same bytes as the current source leaves it intact.
		// A signed document's stored hash covers the signature block, so the
		// baseline is the render of the current source, not the stored hash.
		baseline := document.ContentHash
		if document.Signed() {
			previous, err := s.renderer.Render(document.SourceHTML)
			if err != nil {
				return nil, err
			}
			baseline = ComputeHash(previous)
		}
		document.SourceHTML = *in.SourceHTML
		if newHash := ComputeHash(content); newHash != baseline {
			document.Content = content
			document.ContentHash = newHash
			if document.Signed() {
				retiredCode = document.VerificationCode
				document.VerificationCode = ""
				document.SignerName = ""
				document.SignerRole = ""
				document.SignedAt = nil
			}
		}
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.documents.Update(ctx, document); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionDocumentEdited,
			ProcessID: process.ID,
			ActorID:   actor.ID,
			Detail:    "document " + document.ID.String(),
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}
	if retiredCode != "" && s.codes != nil {
		s.codes.Invalidate(ctx, retiredCode)
	}

	s.logger.InfoContext(ctx, "document edited",
		slog.String("document_id", document.ID.String()),
		slog.String("process_id", process.ID.String()),
	)
	return document, nil
}

// DeleteDocument removes a document. Creator or admin only.
func (s *Service) DeleteDocument(ctx context.Context, documentID id.DocumentID) error {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return err
	}
	document, err := s.findDocument(ctx, documentID)
	if err != nil {
		return err
	}
	process, err := s.findProcess(ctx, document.ProcessID)
	if err != nil {
		return err
	}
	hasGrant, err := s.hasGrant(ctx, process.ID, actor.ID)
	if err != nil {
		return err
	}
	if d := policy.CanView(actor, process, hasGrant); !d.Allowed {
		return s.denied("delete_document", d.Reason)
	}
	if d := policy.CanDeleteDocument(actor, process, hasGrant); !d.Allowed {
		if process.Archived {
			return dErrors.New(dErrors.CodeInvalidState, "cannot delete documents of an archived process")
		}
		return s.denied("delete_document", d.Reason)
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.documents.Delete(ctx, documentID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete document")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionDocumentDeleted,
			ProcessID: process.ID,
			ActorID:   actor.ID,
			Detail:    "document " + documentID.String(),
			Timestamp: now,
		})
	})
	if err != nil {
		return err
	}
	if document.VerificationCode != "" && s.codes != nil {
		s.codes.Invalidate(ctx, document.VerificationCode)
	}

	s.logger.InfoContext(ctx, "document deleted",
		slog.String("document_id", documentID.String()),
		slog.String("process_id", process.ID.String()),
	)
	return nil
}

// GetDocument returns one document, subject to the process view policy.
func (s *Service) GetDocument(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}
	document, err := s.findDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	process, err := s.findProcess(ctx, document.ProcessID)
	if err != nil {
		return nil, err
	}
	hasGrant, err := s.hasGrant(ctx, process.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanView(actor, process, hasGrant); !d.Allowed {
		return nil, s.denied("view_document", d.Reason)
	}
	return document, nil
}

// ListDocuments returns a process's documents in creation order.
func (s *Service) ListDocuments(ctx context.Context, processID id.ProcessID) ([]*models.Document, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}
	process, err := s.findProcess(ctx, processID)
	if err != nil {
		return nil, err
	}
	hasGrant, err := s.hasGrant(ctx, process.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if d := policy.CanView(actor, process, hasGrant); !d.Allowed {
		return nil, s.denied("list_documents", d.Reason)
	}
	documents, err := s.documents.ListByProcess(ctx, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return documents, nil
}
