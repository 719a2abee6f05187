// Package service implements the document subsystem: attachment and editing
// of process documents, digital signing with credential re-verification, and
// public integrity verification by code.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"tramita/internal/audit"
	"tramita/internal/auth"
	dirmodels "tramita/internal/directory/models"
	dirstore "tramita/internal/directory/store"
	"tramita/internal/document/models"
	"tramita/internal/document/render"
	"tramita/internal/document/store"
	"tramita/internal/platform/database"
	"tramita/internal/platform/metrics"
	procmodels "tramita/internal/process/models"
	procstore "tramita/internal/process/store"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/platform/sentinel"
)

// verificationCodeLength is the prefix of the content hash that becomes the
// public verification code.
const verificationCodeLength = 8

// Service owns document lifecycle and integrity.
type Service struct {
	documents     store.DocumentStore
	processes     procstore.ProcessStore
	movements     procstore.MovementStore
	grants        procstore.GrantStore
	collaborators dirstore.CollaboratorStore
	verifier      auth.CredentialVerifier
	renderer      render.Renderer
	codes         store.CodeCache
	tx            database.Tx
	verifyBaseURL string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	audit         *audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAudit(publisher *audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithCodeCache installs a cache in front of verification-code lookups.
func WithCodeCache(cache store.CodeCache) Option {
	return func(s *Service) { s.codes = cache }
}

// WithVerifyBaseURL sets the public verification URL printed into signature
// blocks.
func WithVerifyBaseURL(baseURL string) Option {
	return func(s *Service) { s.verifyBaseURL = strings.TrimRight(baseURL, "/") }
}

func New(documents store.DocumentStore, processes procstore.ProcessStore,
	movements procstore.MovementStore, grants procstore.GrantStore,
	collaborators dirstore.CollaboratorStore, verifier auth.CredentialVerifier,
	renderer render.Renderer, tx database.Tx, opts ...Option) *Service {

	s := &Service{
		documents:     documents,
		processes:     processes,
		movements:     movements,
		grants:        grants,
		collaborators: collaborators,
		verifier:      verifier,
		renderer:      renderer,
		tx:            tx,
		logger:        slog.Default(),
	}
	if s.renderer == nil {
		s.renderer = render.NewTextRenderer()
	}
	if s.tx == nil {
		s.tx = database.NewInMemoryTx()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeHash returns the lowercase hex SHA-256 digest of content.
func ComputeHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// CodeFromHash derives the public verification code from a content hash:
// the first characters of the digest, upper-cased for transcription.
func CodeFromHash(hash string) string {
	if len(hash) < verificationCodeLength {
		return strings.ToUpper(hash)
	}
	return strings.ToUpper(hash[:verificationCodeLength])
}

func (s *Service) loadActor(ctx context.Context, actorID id.CollaboratorID) (*dirmodels.Collaborator, error) {
	if actorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "no authenticated actor")
	}
	actor, err := s.collaborators.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "unknown collaborator")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load actor")
	}
	return actor, nil
}

func (s *Service) findProcess(ctx context.Context, processID id.ProcessID) (*procmodels.Process, error) {
	process, err := s.processes.FindByID(ctx, processID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "process not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load process")
	}
	return process, nil
}

func (s *Service) findDocument(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	if documentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document id is required")
	}
	document, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return document, nil
}

func (s *Service) hasGrant(ctx context.Context, processID id.ProcessID, actorID id.CollaboratorID) (bool, error) {
	ok, err := s.grants.Exists(ctx, processID, actorID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check access grant")
	}
	return ok, nil
}

func (s *Service) ledger(ctx context.Context, processID id.ProcessID) ([]*procmodels.Movement, error) {
	movements, err := s.movements.ListByProcess(ctx, processID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load movement ledger")
	}
	return movements, nil
}

func (s *Service) denied(operation, reason string) error {
	s.metrics.IncrementAccessDenied(operation)
	return dErrors.New(dErrors.CodePermissionDenied, reason)
}

func (s *Service) verifyURL() string {
	return s.verifyBaseURL
}
