// Package httptransport is the thin HTTP layer: it decodes requests, calls
// domain services and encodes their results. No business rules live here.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tramita/internal/auth"
	dirservice "tramita/internal/directory/service"
	docservice "tramita/internal/document/service"
	procservice "tramita/internal/process/service"
)

type Handler struct {
	logger    *slog.Logger
	tokens    *auth.TokenManager
	verifier  auth.CredentialVerifier
	directory *dirservice.Service
	processes *procservice.Service
	documents *docservice.Service
}

func NewHandler(logger *slog.Logger, tokens *auth.TokenManager, verifier auth.CredentialVerifier,
	directory *dirservice.Service, processes *procservice.Service, documents *docservice.Service) *Handler {

	return &Handler{
		logger:    logger,
		tokens:    tokens,
		verifier:  verifier,
		directory: directory,
		processes: processes,
		documents: documents,
	}
}

// NewRouter wires all endpoints. /verify is deliberately outside the auth
// group: integrity verification is open to anyone holding a code.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(recovery(h.logger))
	r.Use(requestID)
	r.Use(requestTime)
	r.Use(requestLogger(h.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/auth/login", h.handleLogin)
	r.Get("/verify/{code}", h.handleVerify)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth(h.tokens, h.logger))

		r.Route("/processes", func(r chi.Router) {
			r.Post("/", h.handleCreateProcess)
			r.Get("/", h.handleSearchProcesses)
			r.Get("/view", h.handleSectorView)
			r.Route("/{processID}", func(r chi.Router) {
				r.Get("/", h.handleGetProcess)
				r.Get("/history", h.handleGetHistory)
				r.Post("/route", h.handleRouteProcess)
				r.Post("/archive", h.handleArchiveProcess)
				r.Post("/reopen", h.handleReopenProcess)
				r.Get("/grants", h.handleListGrants)
				r.Post("/grants", h.handleGrantAccess)
				r.Delete("/grants/{collaboratorID}", h.handleRevokeAccess)
				r.Get("/documents", h.handleListDocuments)
				r.Post("/documents", h.handleAddDocument)
			})
		})

		r.Route("/documents/{documentID}", func(r chi.Router) {
			r.Get("/", h.handleGetDocument)
			r.Patch("/", h.handleEditDocument)
			r.Delete("/", h.handleDeleteDocument)
			r.Post("/sign", h.handleSignDocument)
		})

		r.Route("/sectors", func(r chi.Router) {
			r.Get("/", h.handleListSectors)
			r.Post("/", h.handleCreateSector)
			r.Patch("/{sectorID}", h.handleRenameSector)
		})

		r.Route("/collaborators", func(r chi.Router) {
			r.Post("/", h.handleCreateCollaborator)
			r.Get("/{collaboratorID}", h.handleGetCollaborator)
		})
	})

	return r
}
