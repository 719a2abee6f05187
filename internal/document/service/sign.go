package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tramita/internal/audit"
	"tramita/internal/document/models"
	"tramita/internal/document/render"
	"tramita/internal/policy"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
	"tramita/pkg/requestcontext"
)

// SignDocument applies the actor's digital signature.
//
// Preconditions are checked in a fixed order: the session must be
// authenticated, the password must re-verify against stored credentials,
// the actor must hold signing rights over this document, and the document
// must not already be signed. Re-signing is never allowed; an edit that
// strips the signature is the only way back to a signable state.
//
// On success the final bytes are the signed rendition, the stored hash
// covers those bytes, and the verification code is derived from that hash.
func (s *Service) SignDocument(ctx context.Context, documentID id.DocumentID, password string) (*models.Document, error) {
	actor, err := s.loadActor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.verifier.Verify(ctx, actor.ID, password); err != nil {
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
	if d := policy.CanSign(actor, process, document, hasGrant); !d.Allowed {
		if process.Archived {
			return nil, dErrors.New(dErrors.CodeInvalidState, "cannot sign documents of an archived process")
		}
		return nil, s.denied("sign", d.Reason)
	}
	if document.Signed() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "document is already signed")
	}

	now := requestcontext.Now(ctx)
	signedAt := now.UTC()
	final, err := s.renderer.RenderSigned(document.SourceHTML, render.SignatureBlock{
		SignerName: actor.Name,
		SignerRole: actor.Role,
		SignedAt:   signedAt,
		VerifyURL:  s.verifyURL(),
	})
	if err != nil {
		return nil, err
	}

	document.Content = final
	document.ContentHash = ComputeHash(final)
	document.VerificationCode = CodeFromHash(document.ContentHash)
	document.SignerName = actor.Name
	document.SignerRole = actor.Role
	document.SignedAt = &signedAt

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.documents.Update(ctx, document); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "verification code collision")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store signature")
		}
		return s.audit.Emit(ctx, audit.Event{
			Action:    audit.ActionDocumentSigned,
			ProcessID: process.ID,
			ActorID:   actor.ID,
			Detail:    "code " + document.VerificationCode,
			Timestamp: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementSignatures()
	s.logger.InfoContext(ctx, "document signed",
		slog.String("document_id", document.ID.String()),
		slog.String("process_id", process.ID.String()),
		slog.String("verification_code", document.VerificationCode),
	)
	return document, nil
}

// VerificationResult is the public integrity report for one code.
type VerificationResult struct {
	Valid        bool       `json:"valid"`
	DocumentName string     `json:"document_name"`
	SignerName   string     `json:"signer_name"`
	SignerRole   string     `json:"signer_role,omitempty"`
	SignedAt     *time.Time `json:"signed_at,omitempty"`
	StoredHash   string     `json:"stored_hash"`
	ComputedHash string     `json:"computed_hash"`
}

// VerifyCode is the anonymous integrity check: it resolves the code, rehashes
// the stored bytes and compares against the recorded digest. A mismatch means
// the stored content no longer matches what was signed.
func (s *Service) VerifyCode(ctx context.Context, code string) (*VerificationResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) < 5 {
		return nil, dErrors.New(dErrors.CodeValidation, "verification code is too short")
	}

	document, err := s.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !document.Signed() {
		return nil, dErrors.New(dErrors.CodeNotFound, "no signed document for that code")
	}

	computed := ComputeHash(document.Content)
	valid := computed == document.ContentHash

	result := "valid"
	if !valid {
		result = "tampered"
	}
	s.metrics.ObserveVerification(result)
	s.logger.InfoContext(ctx, "verification performed",
		slog.String("code", code),
		slog.String("result", result),
	)

	return &VerificationResult{
		Valid:        valid,
		DocumentName: document.Name,
		SignerName:   document.SignerName,
		SignerRole:   document.SignerRole,
		SignedAt:     document.SignedAt,
		StoredHash:   document.ContentHash,
		ComputedHash: computed,
	}, nil
}

func (s *Service) resolveCode(ctx context.Context, code string) (*models.Document, error) {
	if s.codes != nil {
		if documentID, ok := s.codes.Get(ctx, code); ok {
			document, err := s.documents.FindByID(ctx, documentID)
			if err == nil && document.VerificationCode == code {
				return document, nil
			}
			s.codes.Invalidate(ctx, code)
		}
	}

	document, err := s.documents.FindByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown verification code")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve verification code")
	}
	if s.codes != nil {
		s.codes.Set(ctx, code, document.ID)
	}
	return document, nil
}
