package test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"tramita/internal/auth"
	dirservice "tramita/internal/directory/service"
	dirstore "tramita/internal/directory/store"
	docservice "tramita/internal/document/service"
	docstore "tramita/internal/document/store"
	procservice "tramita/internal/process/service"
	procstore "tramita/internal/process/store"
	httptransport "tramita/internal/transport/http"
	"tramita/pkg/testutil"
)

func newRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sectors := dirstore.NewInMemorySectorStore()
	collaborators := dirstore.NewInMemoryCollaboratorStore()
	credentials := auth.NewInMemoryCredentialStore()
	processes := procstore.NewInMemoryProcessStore()
	movements := procstore.NewInMemoryMovementStore()
	grants := procstore.NewInMemoryGrantStore()
	documents := docstore.NewInMemoryDocumentStore()

	verifier := auth.NewBcryptVerifier(credentials)
	tokens := auth.NewTokenManager("test-signing-key")

	handler := httptransport.NewHandler(logger, tokens, verifier,
		dirservice.New(sectors, collaborators, credentials, nil, dirservice.WithLogger(logger)),
		procservice.New(processes, movements, grants, sectors, collaborators, nil, procservice.WithLogger(logger)),
		docservice.New(documents, processes, movements, grants, collaborators, verifier, nil, nil,
			docservice.WithLogger(logger)),
	)
	return httptransport.NewRouter(handler)
}

// TestPublicSurface pins down which routes are reachable without a token:
// health checks and verification-code lookups, nothing else.
func TestPublicSurface(t *testing.T) {
	testutil.Given(t, "the HTTP router with no authenticated session", func(t *testing.T) {
		router := newRouter()

		get := func(path string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		testutil.When(t, "calling GET /healthz", func(t *testing.T) {
			rec := get("/healthz")

			testutil.Then(t, "it should respond ok", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
			})
		})

		testutil.When(t, "verifying an unknown code", func(t *testing.T) {
			rec := get("/verify/ABCD1234")

			testutil.Then(t, "it should be reachable anonymously and report not found", func(t *testing.T) {
				if rec.Code != http.StatusNotFound {
					t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
				}
			})
		})

		testutil.When(t, "listing processes", func(t *testing.T) {
			rec := get("/processes/")

			testutil.Then(t, "it should demand authentication", func(t *testing.T) {
				if rec.Code != http.StatusUnauthorized {
					t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
				}
			})
		})
	})
}
