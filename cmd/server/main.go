// Command server wires configuration, storage, services and the HTTP router.
// Business logic lives in the internal service packages; main only assembles
// and supervises.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tramita/internal/audit"
	"tramita/internal/auth"
	dirservice "tramita/internal/directory/service"
	dirstore "tramita/internal/directory/store"
	docservice "tramita/internal/document/service"
	docstore "tramita/internal/document/store"
	"tramita/internal/platform/config"
	"tramita/internal/platform/database"
	"tramita/internal/platform/httpserver"
	"tramita/internal/platform/logger"
	"tramita/internal/platform/metrics"
	platformredis "tramita/internal/platform/redis"
	procservice "tramita/internal/process/service"
	procstore "tramita/internal/process/store"
	httptransport "tramita/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	// Stores: PostgreSQL when a DSN is configured, in-memory otherwise so the
	// server can run standalone in development.
	var (
		tx            database.Tx
		sectors       dirstore.SectorStore
		collaborators dirstore.CollaboratorStore
		credentials   auth.CredentialStore
		processes     procstore.ProcessStore
		movements     procstore.MovementStore
		grants        procstore.GrantStore
		documents     docstore.DocumentStore
		trail         audit.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := database.Open(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		tx = database.NewSQLTx(db)
		sectors = dirstore.NewPostgresSectorStore(db)
		collaborators = dirstore.NewPostgresCollaboratorStore(db)
		credentials = auth.NewPostgresCredentialStore(db)
		processes = procstore.NewPostgresProcessStore(db)
		movements = procstore.NewPostgresMovementStore(db)
		grants = procstore.NewPostgresGrantStore(db)
		documents = docstore.NewPostgresDocumentStore(db)
		trail = audit.NewPostgresStore(db)
		log.Info("using postgres storage")
	} else {
		tx = database.NewInMemoryTx()
		sectors = dirstore.NewInMemorySectorStore()
		collaborators = dirstore.NewInMemoryCollaboratorStore()
		credentials = auth.NewInMemoryCredentialStore()
		processes = procstore.NewInMemoryProcessStore()
		movements = procstore.NewInMemoryMovementStore()
		grants = procstore.NewInMemoryGrantStore()
		documents = docstore.NewInMemoryDocumentStore()
		trail = audit.NewInMemoryStore()
		log.Warn("no TRAMITA_POSTGRES_DSN set, using in-memory storage")
	}

	publisher := audit.NewPublisher(trail)
	verifier := auth.NewBcryptVerifier(credentials)
	tokens := auth.NewTokenManager(cfg.JWTSigningKey)

	documentOpts := []docservice.Option{
		docservice.WithLogger(log),
		docservice.WithMetrics(m),
		docservice.WithAudit(publisher),
		docservice.WithVerifyBaseURL(cfg.VerifyBaseURL),
	}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		documentOpts = append(documentOpts, docservice.WithCodeCache(docstore.NewRedisCodeCache(redisClient)))
		log.Info("verification-code cache enabled")
	}

	processService := procservice.New(processes, movements, grants, sectors, collaborators, tx,
		procservice.WithLogger(log),
		procservice.WithMetrics(m),
		procservice.WithAudit(publisher),
	)
	documentService := docservice.New(documents, processes, movements, grants, collaborators,
		verifier, nil, tx, documentOpts...)
	directoryService := dirservice.New(sectors, collaborators, credentials, tx,
		dirservice.WithLogger(log),
		dirservice.WithMetrics(m),
	)

	handler := httptransport.NewHandler(log, tokens, verifier, directoryService, processService, documentService)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
